package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/pawferry/pawferry/pkg/session"
)

var defaultClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 15 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "server base URL")
		email    = flag.String("email", "dev@example.com", "account email")
		password = flag.String("password", "devpassword", "account password")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := session.DefaultConfig()
	cfg.BaseURL = *baseURL
	client, err := session.NewClient(cfg, defaultClient, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	acct, err := client.Login(ctx, *email, *password)
	if err != nil {
		acct, err = client.Register(ctx, "Dev User", *email, *password)
		if err != nil {
			log.Fatalf("could not sign in or register: %v", err)
		}
		fmt.Printf("registered %s (id %d)\n", acct.Email, acct.ID)
	} else {
		fmt.Printf("signed in as %s (id %d)\n", acct.Email, acct.ID)
	}

	var created struct {
		Pet struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"pet"`
	}
	if err := client.Post(ctx, "/v1/pets", map[string]any{
		"name": "Rex", "species": "dog", "weightKg": 12.5,
	}, &created); err != nil {
		log.Fatalf("create pet: %v", err)
	}
	fmt.Printf("created pet %q (id %d)\n", created.Pet.Name, created.Pet.ID)

	var booked struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
	}
	if err := client.Post(ctx, "/v1/bookings", map[string]any{
		"petId":          created.Pet.ID,
		"pickupAddress":  "12 Bark St",
		"dropoffAddress": "99 Meow Ave",
		"scheduledAt":    time.Now().Add(48 * time.Hour).UTC().UnixMilli(),
		"priceCents":     5000,
	}, &booked); err != nil {
		log.Fatalf("create booking: %v", err)
	}
	fmt.Printf("created booking %d (%s)\n", booked.Booking.ID, booked.Booking.Status)

	var cancelled struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
	}
	if err := client.Patch(ctx, fmt.Sprintf("/v1/bookings/%d/cancel", booked.Booking.ID), nil, &cancelled); err != nil {
		log.Fatalf("cancel booking: %v", err)
	}
	fmt.Printf("cancelled booking %d (%s)\n", cancelled.Booking.ID, cancelled.Booking.Status)

	var listed struct {
		Bookings []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"bookings"`
	}
	if err := client.Get(ctx, "/v1/bookings", &listed); err != nil {
		log.Fatalf("list bookings: %v", err)
	}
	for _, b := range listed.Bookings {
		fmt.Printf("booking %d: %s\n", b.ID, b.Status)
	}

	if err := client.Logout(ctx); err != nil {
		log.Printf("logout: %v", err)
	}
}
