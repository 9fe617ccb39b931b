package database

import "time"

// Connection definition sql/broker connect setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}
