package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Store       Store
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database  Database  `envPrefix:"DB_"`
	CartStore CartStore `envPrefix:"CART_STORE_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Reconcile Reconcile `envPrefix:"RECONCILE_"`

	Payment   Payment   `envPrefix:"PAYMENT_"`
	Midtrans  Midtrans  `envPrefix:"MIDTRANS_"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	CheckoutTimeout time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"15s"`
}

// Store holds storefront presentation settings.
type Store struct {
	Currency string `env:"STORE_CURRENCY" envDefault:"IDR"`
	Locale   string `env:"STORE_LOCALE" envDefault:"id-ID"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql
	URL    string `env:"URL" envDefault:"stokcer.db"`
}

type CartStore struct {
	Driver   string        `env:"DRIVER" envDefault:"bolt"` // bolt, redis
	BoltPath string        `env:"BOLT_PATH" envDefault:"cart.db"`
	TTL      time.Duration `env:"TTL" envDefault:"720h"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"stokcer-checkout-events"`
}

type Reconcile struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Interval time.Duration `env:"INTERVAL" envDefault:"1m"`
	MinAge   time.Duration `env:"MIN_AGE" envDefault:"2m"`
}

type Payment struct {
	Provider string `env:"PROVIDER" envDefault:"midtrans"` // midtrans, stripe, braintree
	Mode     string `env:"MODE" envDefault:"live"`         // live, fake
}

type Midtrans struct {
	ServerKey     string `env:"SERVER_KEY"`
	SnapURL       string `env:"SNAP_URL" envDefault:"https://app.sandbox.midtrans.com"`
	CoreURL       string `env:"CORE_URL" envDefault:"https://api.sandbox.midtrans.com"`
	FinishURL     string `env:"FINISH_URL"`
	ExpiryMinutes int    `env:"EXPIRY_MINUTES" envDefault:"60"`
}

type Stripe struct {
	SecretKey  string `env:"SECRET_KEY"`
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SuccessURL string `env:"SUCCESS_URL"`
	CancelURL  string `env:"CANCEL_URL"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Payment.Mode {
	case "live", "fake":
	default:
		return fmt.Errorf("unknown PAYMENT_MODE %q", c.Payment.Mode)
	}
	switch c.Payment.Provider {
	case "midtrans", "stripe", "braintree":
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payment.Provider)
	}
	switch c.CartStore.Driver {
	case "bolt", "redis":
	default:
		return fmt.Errorf("unknown CART_STORE_DRIVER %q", c.CartStore.Driver)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}
