package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"fan-control-backend/config"
	"fan-control-backend/internal/fan"
)

// Connect opens an MQTT connection to the configured broker.
func Connect(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	if len(cfg.Username) > 0 && len(cfg.Password) > 0 {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	zap.S().Infof("Connected to MQTT broker %s", cfg.Broker)
	return client, nil
}

// MQTTSender publishes retained state topics below a prefix:
// <prefix>/state (ON|OFF), <prefix>/speed (device command) and
// <prefix>/level (0-5).
type MQTTSender struct {
	client mqtt.Client
	prefix string
}

// NewMQTTSender creates a sender publishing under prefix.
func NewMQTTSender(client mqtt.Client, prefix string) *MQTTSender {
	return &MQTTSender{client: client, prefix: prefix}
}

// Messages returns the topic/payload pairs for a snapshot.
func (m *MQTTSender) Messages(s fan.Snapshot) [][2]string {
	power := "OFF"
	if s.Power {
		power = "ON"
	}
	return [][2]string{
		{m.prefix + "/state", power},
		{m.prefix + "/speed", string(s.Command)},
		{m.prefix + "/level", strconv.Itoa(s.Speed)},
	}
}

// Send implements Sender.
func (m *MQTTSender) Send(ctx context.Context, s fan.Snapshot) error {
	for _, msg := range m.Messages(s) {
		token := m.client.Publish(msg[0], 0, true, msg[1])
		select {
		case <-token.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("could not publish to topic %s: %w", msg[0], err)
		}
	}
	return nil
}
