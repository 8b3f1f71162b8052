package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/Anas-Nayeem4922/draw-app/api"
	"github.com/Anas-Nayeem4922/draw-app/config"
	"github.com/Anas-Nayeem4922/draw-app/pkg/msgbroker"
	"github.com/Anas-Nayeem4922/draw-app/storage"
	"github.com/go-redis/redis/v7"
	"github.com/labstack/gommon/log"
)

func main() {
	// APP configuration
	c := config.Get()

	// Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	err := rdb.Ping().Err()
	if err != nil {
		log.Fatal(err)
	}

	// Storage
	s := storage.New(rdb)
	// Message broker
	mb := msgbroker.NewRedisBroker(rdb)

	// API
	a := api.New(c, s, mb)

	go func() {
		// Starting API
		if err := a.Start(); err != nil {
			log.Warn(err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	// waiting for signals
	quit := <-signals
	log.Infof("signal %s received, stopping server...", quit)
	// Stopping server
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	if err = a.Close(ctx); err != nil {
		log.Error(err)
	}
	cancel()

	if err = mb.Close(); err != nil {
		log.Error(err)
	}
	if err = rdb.Close(); err != nil {
		log.Error(err)
	}
}
