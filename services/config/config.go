package config

import (
	"context"

	"latchfw/bus"
	"latchfw/errcode"

	"github.com/andreyvit/tinyjson"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey struct{}

// WithDevice returns a context carrying the board name whose embedded
// configuration should be published.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ctxKey{}, device)
}

// DeviceFrom returns the board name stored by WithDevice.
func DeviceFrom(ctx context.Context) string {
	d, _ := ctx.Value(ctxKey{}).(string)
	return d
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig publishes each top-level key of the device's embedded
// JSON object as a retained config/<key> message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device := DeviceFrom(ctx)
	if device == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no device in context"}
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return &errcode.E{C: errcode.Unsupported, Op: "config", Msg: "no embedded config for " + device}
	}

	m, err := parseObject(raw)
	if err != nil {
		return errcode.Wrap(errcode.InvalidPayload, "config."+device, err)
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// parseObject walks raw as a single JSON object. tinyjson panics on
// malformed input, so the walk runs under recover.
func parseObject(raw []byte) (m map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errcode.E{C: errcode.InvalidPayload, Op: "config.parse", Msg: "malformed JSON"}
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "config.parse", Msg: "config is not a JSON object"}
	}
	return m, nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
