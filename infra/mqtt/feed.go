// Package mqtt feeds live vehicle status updates from the telematics broker
// into the fleet store.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/infra/logger"
)

// FeedConfig defines the connection parameters for the fleet status feed.
type FeedConfig struct {
	Enabled    bool        `json:"enabled"`
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`
}

// StatusWriter applies a reported status to a vehicle. The fleet store
// implements it; the result reports whether the vehicle is known.
type StatusWriter interface {
	SetVehicleStatus(id string, status model.VehicleStatus) bool
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// FleetFeed subscribes to the telematics topic and mirrors vehicle status
// changes into the store.
type FleetFeed struct {
	cli    pahoClient
	topic  string
	qos    byte
	store  StatusWriter
	logger logger.Logger
}

// statusMessage is the wire form published by the telematics gateway.
type statusMessage struct {
	VehicleID string `json:"vehicle_id"`
	Status    string `json:"status"`
}

// NewFleetFeed connects to the broker and subscribes to the status topic.
func NewFleetFeed(cfg FeedConfig, store StatusWriter) (*FleetFeed, error) {
	if cfg.Broker == "" || cfg.Topic == "" {
		return nil, fmt.Errorf("fleet feed requires broker and topic")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("fleet_feed")
	f := &FleetFeed{topic: cfg.Topic, qos: cfg.QoS, store: store, logger: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(f.topic, f.qos, f.onStatus); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	f.cli = c
	return f, nil
}

// NewClientOptions builds mqtt client options from FeedConfig.
func NewClientOptions(cfg FeedConfig) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c FeedConfig) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (f *FleetFeed) onStatus(_ paho.Client, msg paho.Message) {
	var m statusMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		f.logger.Errorf("failed to decode status: %v", err)
		return
	}
	status := model.VehicleStatus(m.Status)
	if !status.Valid() {
		f.logger.Warnf("ignoring unknown status %q for vehicle %s", m.Status, m.VehicleID)
		return
	}
	if !f.store.SetVehicleStatus(m.VehicleID, status) {
		f.logger.Warnf("status update for unknown vehicle %s dropped", m.VehicleID)
		return
	}
	f.logger.Infof("vehicle %s now %s", m.VehicleID, status)
}

// Disconnect gracefully closes the MQTT connection.
func (f *FleetFeed) Disconnect() {
	if f.cli != nil && f.cli.IsConnected() {
		f.cli.Disconnect(250)
	}
}
