package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"ibadah-companion-backend/config"
)

const mqttQoS = 1

// MQTTPublisher publishes reminders for mosque display screens on
// "<prefix>/<locale>/prayer". Messages are retained so a screen that
// connects later still gets the current window.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg *config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", cfg.BrokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return NewMQTTPublisherWithClient(client, cfg.TopicPrefix), nil
}

// NewMQTTPublisherWithClient wraps an existing client.
func NewMQTTPublisherWithClient(client mqtt.Client, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix}
}

// Topic returns the topic reminders for a locale are published on.
func (p *MQTTPublisher) Topic(localeID string) string {
	return fmt.Sprintf("%s/%s/prayer", p.prefix, localeID)
}

// Publish sends msg and waits for the broker to acknowledge it or ctx to end.
func (p *MQTTPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(msg.LocaleID), mqttQoS, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.Topic(msg.LocaleID), err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
