package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	RabbitMQ   RabbitMQConfig `mapstructure:"rabbitmq"`
	Message    MessageConfig  `mapstructure:"message"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP       string `mapstructure:"ip"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
	Queue      string `mapstructure:"queue"`

	RetryInterval int `mapstructure:"retry_interval"`
	RetryCount    int `mapstructure:"retry_count"`
}

// MessageConfig definition message pipeline setting
type MessageConfig struct {
	DefaultRoom string `mapstructure:"default_room"`
	ListLimit   int    `mapstructure:"list_limit"`
	PageSize    int    `mapstructure:"page_size"`

	StoreTimeout     time.Duration `mapstructure:"store_timeout"`
	PublishTimeout   time.Duration `mapstructure:"publish_timeout"`
	BroadcastTimeout time.Duration `mapstructure:"broadcast_timeout"`
}

// ApplyDefaults 填上未設定的欄位
// exchange/routing key/queue 與分頁大小皆可由 YAML 或環境變數覆蓋
func (c *Chat) ApplyDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "chat.exchange"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "chat.message"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "chat.queue"
	}
	if c.Message.DefaultRoom == "" {
		c.Message.DefaultRoom = "general"
	}
	if c.Message.ListLimit <= 0 {
		c.Message.ListLimit = 50
	}
	if c.Message.PageSize <= 0 {
		c.Message.PageSize = 20
	}
	if c.Message.StoreTimeout <= 0 {
		c.Message.StoreTimeout = 5 * time.Second
	}
	if c.Message.PublishTimeout <= 0 {
		c.Message.PublishTimeout = 2 * time.Second
	}
	if c.Message.BroadcastTimeout <= 0 {
		c.Message.BroadcastTimeout = time.Second
	}
}
