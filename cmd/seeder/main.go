package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// seedVehicle describes one demo vehicle and its maintenance history.
type seedVehicle struct {
	Name                  string `json:"name"`
	Plate                 string `json:"plate"`
	Fuel                  string `json:"fuel"`
	FirstRegistrationDate string `json:"first_registration_date"`
	Km                    int    `json:"km"`

	events []seedEvent
}

type seedEvent struct {
	Type  string  `json:"type"`
	Date  string  `json:"date"`
	Km    int     `json:"km"`
	Cost  float64 `json:"cost"`
	Notes string  `json:"notes"`
}

var garage = []seedVehicle{
	{
		Name:                  "Clio 4",
		Plate:                 "AB-123-CD",
		Fuel:                  "Essence",
		FirstRegistrationDate: "2018-03-12",
		Km:                    78500,
		events: []seedEvent{
			{Type: "Vidange & Filtre à huile", Date: "2024-11-02", Km: 74000, Cost: 89.9, Notes: "Huile 5W30"},
			{Type: "Contrôle Technique", Date: "2024-04-18", Km: 69800, Cost: 78},
			{Type: "Pneus été/hiver", Date: "2023-10-05", Km: 64200, Cost: 320, Notes: "4 Michelin CrossClimate"},
			{Type: "Filtre à air", Date: "2023-03-21", Km: 58000, Cost: 35},
		},
	},
	{
		Name:                  "308 SW",
		Plate:                 "EF-456-GH",
		Fuel:                  "Diesel",
		FirstRegistrationDate: "2020-09-01",
		Km:                    112000,
		events: []seedEvent{
			{Type: "Vidange & Filtre à huile", Date: "2025-01-20", Km: 108000, Cost: 110},
			{Type: "Filtre à carburant", Date: "2024-06-11", Km: 96000, Cost: 65},
			{Type: "Liquide de frein", Date: "2023-12-02", Km: 87500, Cost: 60},
		},
	},
	{
		Name:                  "Zoe",
		Plate:                 "IJ-789-KL",
		Fuel:                  "Électrique",
		FirstRegistrationDate: "2022-05-30",
		Km:                    31000,
		events: []seedEvent{
			{Type: "Liquide de frein", Date: "2024-07-09", Km: 24000, Cost: 55},
		},
	},
}

type client struct {
	apiURL string
	token  string
	http   *http.Client
}

func (c *client) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.apiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s (%s)", http.MethodPost, path, resp.Status, bytes.TrimSpace(data))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// login signs in, registering the account first when it does not exist.
func (c *client) login(username, password string) error {
	creds := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}

	if err := c.post("/api/auth/login", creds, &resp); err != nil {
		log.WithField("username", username).Info("Login failed, registering demo account")
		register := map[string]string{
			"username": username,
			"password": password,
			"email":    username + "@example.com",
		}
		if err := c.post("/api/auth/register", register, &resp); err != nil {
			return err
		}
	}
	c.token = resp.Token
	return nil
}

func (c *client) seed() error {
	for _, v := range garage {
		var created struct {
			ID string `json:"id"`
		}
		if err := c.post("/api/vehicles", v, &created); err != nil {
			return err
		}
		log.WithFields(log.Fields{"vehicle": v.Name, "id": created.ID}).Info("Vehicle created")

		for _, e := range v.events {
			if err := c.post("/api/vehicles/"+created.ID+"/events", e, nil); err != nil {
				return err
			}
		}
		log.WithFields(log.Fields{"vehicle": v.Name, "events": len(v.events)}).Info("History seeded")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	c := &client{
		apiURL: getenv("API_URL", "http://localhost:8080"),
		http:   &http.Client{Timeout: 10 * time.Second},
	}

	username := getenv("SEED_USERNAME", "demo")
	password := getenv("SEED_PASSWORD", "demo-password-123")

	if err := c.login(username, password); err != nil {
		log.WithError(err).Fatal("Failed to sign in")
	}
	if err := c.seed(); err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.Info("Demo garage ready")
}
