package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rishta/config"
	"rishta/internal/database"
	"rishta/internal/router"
	"rishta/pkg/cloudinary"
	"rishta/pkg/payment"
	"rishta/pkg/telephony"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)
	database.SeedCreditPackages(db)

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
	} else {
		log.Printf("[UPLOAD] Cloudinary disabled: set CLOUDINARY_CLOUD_NAME to enable photo uploads")
	}

	var callProvider telephony.Provider
	if cfg.Telephony.AccountSID != "" {
		callProvider = telephony.NewExotelProvider(cfg.Telephony.BaseURL, cfg.Telephony.AccountSID, cfg.Telephony.APIKey, cfg.Telephony.APIToken)
		log.Printf("[CALL] Exotel provider enabled account=%s", cfg.Telephony.AccountSID)
	} else {
		callProvider = &telephony.StubProvider{}
		log.Printf("[CALL] Stub telephony provider in use: set TELEPHONY_ACCOUNT_SID for real calls")
	}

	var payProvider payment.Provider
	if cfg.Payment.RazorpayKeyID != "" {
		payProvider = payment.NewRazorpayProvider(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpayKeySecret)
		log.Printf("[PAYMENT] Razorpay provider enabled")
	} else {
		payProvider = &payment.StubProvider{}
		log.Printf("[PAYMENT] Stub payment provider in use: set RAZORPAY_KEY_ID for real payments")
	}

	engine := router.Setup(cfg, db, cloud, callProvider, payProvider)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
