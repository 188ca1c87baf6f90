// Package domain contains entity without logic, just meta-data
package domain

import "time"

// Client describes the browser behind a session. Token is the cookie
// label the HTTP layer hands out; it is not a credential.
type Client struct {
	Token       string    `json:"token"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

// NewClient avoids raw literals in adapters and keeps construction obvious.
func NewClient(token, remoteAddr string) *Client {
	return &Client{Token: token, RemoteAddr: remoteAddr, ConnectedAt: time.Now()}
}
