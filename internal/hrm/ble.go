package hrm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// ErrNotFound is returned when no heart-rate strap shows up during a scan
var ErrNotFound = errors.New("no heart rate monitor found")

// session is one live connection to a strap
type session struct {
	name       string
	address    string
	disconnect func() error
}

// connector finds a strap, subscribes to its measurements and reports a
// dropped link through onLost
type connector interface {
	Connect(ctx context.Context, onData func([]byte), onLost func()) (session, error)
}

// bleConnector drives a tinygo bluetooth adapter
type bleConnector struct {
	adapter     *bluetooth.Adapter
	address     string // Optional filter, case-insensitive
	scanTimeout time.Duration
	logger      *log.Logger

	enableOnce sync.Once
	enableErr  error

	mu     sync.Mutex
	onLost map[string]func()
}

func newBLEConnector(adapter *bluetooth.Adapter, address string, scanTimeout time.Duration, logger *log.Logger) *bleConnector {
	return &bleConnector{
		adapter:     adapter,
		address:     strings.ToUpper(address),
		scanTimeout: scanTimeout,
		logger:      logger,
		onLost:      make(map[string]func()),
	}
}

func (c *bleConnector) enable() error {
	c.enableOnce.Do(func() {
		c.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
			if connected {
				return
			}
			address := device.Address.String()
			c.mu.Lock()
			onLost := c.onLost[address]
			delete(c.onLost, address)
			c.mu.Unlock()
			if onLost != nil {
				c.logger.Printf("HRM: %s disconnected", address)
				onLost()
			}
		})
		if err := c.adapter.Enable(); err != nil {
			c.enableErr = fmt.Errorf("enable BLE stack: %w", err)
		}
	})
	return c.enableErr
}

func (c *bleConnector) Connect(ctx context.Context, onData func([]byte), onLost func()) (session, error) {
	if err := c.enable(); err != nil {
		return session{}, err
	}

	found, err := c.scan(ctx)
	if err != nil {
		return session{}, err
	}
	address := found.Address.String()
	name := found.LocalName()
	if name == "" {
		name = "Unknown"
	}
	c.logger.Printf("HRM: found %s (%s) [RSSI: %d]", name, address, found.RSSI)

	device, err := c.adapter.Connect(found.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return session{}, fmt.Errorf("connect %s: %w", address, err)
	}

	if err := subscribe(device, onData); err != nil {
		_ = device.Disconnect()
		return session{}, fmt.Errorf("subscribe %s: %w", address, err)
	}

	c.mu.Lock()
	c.onLost[address] = onLost
	c.mu.Unlock()

	return session{
		name:    name,
		address: address,
		disconnect: func() error {
			c.mu.Lock()
			delete(c.onLost, address)
			c.mu.Unlock()
			return device.Disconnect()
		},
	}, nil
}

// scan returns the first advertisement of a heart-rate strap, or of the
// configured address
func (c *bleConnector) scan(ctx context.Context) (bluetooth.ScanResult, error) {
	scanCtx, cancel := context.WithTimeout(ctx, c.scanTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		result bluetooth.ScanResult
		found  bool
	)
	stopped := make(chan struct{})
	go func() {
		select {
		case <-scanCtx.Done():
			if err := c.adapter.StopScan(); err != nil {
				c.logger.Printf("HRM: stop scan: %v", err)
			}
		case <-stopped:
		}
	}()

	c.logger.Printf("HRM: scanning for %s", c.describeTarget())
	err := c.adapter.Scan(func(adapter *bluetooth.Adapter, device bluetooth.ScanResult) {
		if !c.matches(device) {
			return
		}
		mu.Lock()
		if !found {
			found = true
			result = device
		}
		mu.Unlock()
		if err := adapter.StopScan(); err != nil {
			c.logger.Printf("HRM: stop scan: %v", err)
		}
	})
	close(stopped)
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !found {
		if ctx.Err() != nil {
			return bluetooth.ScanResult{}, ctx.Err()
		}
		return bluetooth.ScanResult{}, ErrNotFound
	}
	return result, nil
}

func (c *bleConnector) matches(device bluetooth.ScanResult) bool {
	if c.address != "" {
		return strings.ToUpper(device.Address.String()) == c.address
	}
	return device.HasServiceUUID(bluetooth.ServiceUUIDHeartRate)
}

func (c *bleConnector) describeTarget() string {
	if c.address != "" {
		return c.address
	}
	return "any heart rate service"
}

func subscribe(device bluetooth.Device, onData func([]byte)) error {
	services, err := device.DiscoverServices([]bluetooth.UUID{bluetooth.ServiceUUIDHeartRate})
	if err != nil {
		return fmt.Errorf("discover heart rate service: %w", err)
	}
	if len(services) == 0 {
		return errors.New("heart rate service not found")
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{bluetooth.CharacteristicUUIDHeartRateMeasurement})
	if err != nil {
		return fmt.Errorf("discover heart rate measurement: %w", err)
	}
	if len(chars) == 0 {
		return errors.New("heart rate measurement characteristic not found")
	}
	if err := chars[0].EnableNotifications(onData); err != nil {
		return fmt.Errorf("enable notifications: %w", err)
	}
	return nil
}
