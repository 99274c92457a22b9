// Package api is a thin client for the shuttle fleet REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
)

const vehiclesPath = "/api/backend/vehicles/"

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.Code, e.Body)
}

// Client talks to the fleet backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. An empty token sends no Authorization header.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListVehicles fetches every vehicle with its routes.
func (c *Client) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	var out []fleet.Vehicle
	if err := c.do(ctx, "list vehicles", http.MethodGet, vehiclesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVehicle fetches a single vehicle.
func (c *Client) GetVehicle(ctx context.Context, id int) (*fleet.Vehicle, error) {
	var out fleet.Vehicle
	if err := c.do(ctx, "get vehicle", http.MethodGet, vehiclePath(id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVehicle registers a new vehicle and returns the stored record.
func (c *Client) CreateVehicle(ctx context.Context, v fleet.Vehicle) (*fleet.Vehicle, error) {
	var out fleet.Vehicle
	if err := c.do(ctx, "create vehicle", http.MethodPost, vehiclesPath, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVehicle replaces the editable fields of a vehicle.
func (c *Client) UpdateVehicle(ctx context.Context, id int, v fleet.Vehicle) (*fleet.Vehicle, error) {
	var out fleet.Vehicle
	if err := c.do(ctx, "update vehicle", http.MethodPut, vehiclePath(id, ""), v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVehicle removes a vehicle.
func (c *Client) DeleteVehicle(ctx context.Context, id int) error {
	return c.do(ctx, "delete vehicle", http.MethodDelete, vehiclePath(id, ""), nil, nil)
}

// ListRoutes fetches the routes assigned to a vehicle.
func (c *Client) ListRoutes(ctx context.Context, vehicleID int) ([]fleet.Route, error) {
	var out []fleet.Route
	if err := c.do(ctx, "list routes", http.MethodGet, vehiclePath(vehicleID, "routes/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRoute appends a route to a vehicle's schedule.
func (c *Client) AddRoute(ctx context.Context, vehicleID int, r fleet.Route) (*fleet.Route, error) {
	var out fleet.Route
	if err := c.do(ctx, "add route", http.MethodPost, vehiclePath(vehicleID, "add_route/"), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdvanceRoute marks the vehicle's current route complete and returns the
// updated vehicle.
func (c *Client) AdvanceRoute(ctx context.Context, vehicleID int) (*fleet.Vehicle, error) {
	var out fleet.Vehicle
	if err := c.do(ctx, "advance route", http.MethodPost, vehiclePath(vehicleID, "advance_route/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func vehiclePath(id int, action string) string {
	return fmt.Sprintf("%s%d/%s", vehiclesPath, id, action)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
