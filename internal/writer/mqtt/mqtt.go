// internal/writer/mqtt/mqtt.go

// Package mqtt publishes each reading of a cycle to every enabled broker.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/config"
	"github.com/solarian-energy/datalogger/internal/poller"
	"github.com/solarian-energy/datalogger/internal/writer"
)

const (
	KeepAlive      = 15 * time.Second
	DefaultTimeout = 10 * time.Second
	quiesceMillis  = 250
)

// Client is the subset of a broker session the writer uses.
type Client interface {
	Connect() error
	Publish(topic string, payload []byte) error
	Disconnect()
}

// Dialer builds an unconnected client for one server.
type Dialer func(s config.ServerConfig, clientID string, timeout time.Duration) Client

// Options configures a Writer.
type Options struct {
	Servers    []config.ServerConfig
	Serial     string // board serial, used in the client id
	ConfigName string // device map name, keeps concurrent runs apart
	Timeout    time.Duration
	Dial       Dialer // nil means paho

	Log *zap.Logger
}

// Writer connects to each enabled server per cycle and publishes one
// message per reading to <topic>/<Device_Name>.
type Writer struct {
	opts Options
	log  *zap.Logger
}

var _ writer.Writer = (*Writer)(nil)

func New(opts Options) (*Writer, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Dial == nil {
		opts.Dial = PahoDialer
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	enabled := 0
	for _, s := range opts.Servers {
		if s.Enabled {
			enabled++
			if _, err := TLSConfig(s); err != nil {
				return nil, err
			}
			log.Debug("mqtt server configured",
				zap.String("topic", s.Topic),
				zap.String("address", s.IPAddress),
				zap.Int("port", s.Port),
				zap.String("username", s.Username),
				zap.Bool("tls", s.UseTLS()),
				zap.Bool("verify", !s.InsecureSkipVerify),
			)
		}
	}
	if enabled == 0 {
		log.Warn("no enabled mqtt server")
	}
	return &Writer{opts: opts, log: log}, nil
}

func (w *Writer) Name() string { return "mqtt" }

// Topic returns the topic a reading is published to.
func Topic(base, deviceName string) string {
	return base + "/" + deviceName
}

// Write publishes to every enabled server. A failing server is logged
// and does not stop the others.
func (w *Writer) Write(ctx context.Context, res poller.Result) error {
	start := time.Now()
	msgs, err := messages(res)
	if err != nil {
		return err
	}

	var errs error
	for _, s := range w.opts.Servers {
		if !s.Enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := w.send(s, msgs); err != nil {
			w.log.Error("mqtt send failed", zap.String("address", s.IPAddress), zap.Int("port", s.Port), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("mqtt %s: %w", net.JoinHostPort(s.IPAddress, strconv.Itoa(s.Port)), err))
		}
	}

	w.log.Debug("mqtt send completed", zap.Duration("elapsed", time.Since(start)))
	return errs
}

type message struct {
	device  string
	payload []byte
}

func messages(res poller.Result) ([]message, error) {
	out := make([]message, 0, len(res.Batch))
	for _, r := range res.Batch {
		b, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("mqtt: encode %s: %w", r.DeviceName(), err)
		}
		out = append(out, message{device: r.DeviceName(), payload: b})
	}
	return out, nil
}

func (w *Writer) send(s config.ServerConfig, msgs []message) error {
	c := w.opts.Dial(s, ClientID(w.opts.Serial, w.opts.ConfigName), w.opts.Timeout)
	if err := c.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Disconnect()

	var errs error
	for _, m := range msgs {
		topic := Topic(s.Topic, m.device)
		if err := c.Publish(topic, m.payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("publish %s: %w", topic, err))
		}
	}
	return errs
}

// ClientID is solarian-<serial>-<config>. Runs on one board with
// different device maps connect as different clients.
func ClientID(serial, configName string) string {
	id := "solarian"
	if serial != "" {
		id += "-" + serial
	}
	if configName != "" {
		id += "-" + configName
	}
	if id == "solarian" {
		id += "-datalogger"
	}
	return id
}

// ---- paho ----

var errTimeout = errors.New("mqtt: operation timed out")

type pahoClient struct {
	c       paho.Client
	timeout time.Duration
	err     error
}

// PahoDialer builds a paho client: TLS 1.2 unless disabled, keepalive
// 15s, no automatic reconnect. A bad TLS setting is reported by Connect.
func PahoDialer(s config.ServerConfig, id string, timeout time.Duration) Client {
	opts, err := clientOptions(s, id, timeout)
	if err != nil {
		return &pahoClient{err: err}
	}
	return &pahoClient{c: paho.NewClient(opts), timeout: timeout}
}

// TLSConfig returns the TLS settings for s, or nil when TLS is off.
// The broker certificate is checked against ca_file (system roots when
// empty) unless insecure_skip_verify is set.
func TLSConfig(s config.ServerConfig) (*tls.Config, error) {
	if !s.UseTLS() {
		return nil, nil
	}
	tc := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tls.VersionTLS12,
		ServerName:         s.IPAddress,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	if s.CAFile != "" {
		pem, err := os.ReadFile(s.CAFile)
		if err != nil {
			return nil, fmt.Errorf("mqtt: ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("mqtt: ca_file %s: no certificates", s.CAFile)
		}
		tc.RootCAs = pool
	}
	return tc, nil
}

func clientOptions(s config.ServerConfig, id string, timeout time.Duration) (*paho.ClientOptions, error) {
	scheme := "tcp"
	if s.UseTLS() {
		scheme = "ssl"
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(s.IPAddress, strconv.Itoa(s.Port)))).
		SetClientID(id).
		SetUsername(s.Username).
		SetPassword(s.Password).
		SetKeepAlive(KeepAlive).
		SetConnectTimeout(timeout).
		SetWriteTimeout(timeout).
		SetAutoReconnect(false).
		SetCleanSession(true)

	tc, err := TLSConfig(s)
	if err != nil {
		return nil, err
	}
	if tc != nil {
		opts.SetTLSConfig(tc)
	}
	return opts, nil
}

func (p *pahoClient) Connect() error {
	if p.err != nil {
		return p.err
	}
	return wait(p.c.Connect(), p.timeout)
}

func (p *pahoClient) Publish(topic string, payload []byte) error {
	return wait(p.c.Publish(topic, 0, false, payload), p.timeout)
}

func (p *pahoClient) Disconnect() {
	if p.c != nil {
		p.c.Disconnect(quiesceMillis)
	}
}

func wait(t paho.Token, timeout time.Duration) error {
	if !t.WaitTimeout(timeout) {
		return errTimeout
	}
	return t.Error()
}
