package e2e

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/infra/mqtt"
)

// startMosquitto spins up a Mosquitto broker with anonymous access for tests.
func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	confPath := filepath.Join(t.TempDir(), "mosquitto.conf")
	conf := "listener 1883\nallow_anonymous true\n"
	if err := os.WriteFile(confPath, []byte(conf), 0o644); err != nil {
		t.Fatalf("write broker config: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Files: []tc.ContainerFile{{
			HostFilePath:      confPath,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
		WaitingFor: wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// Test_E2E_FleetFeed drives a vehicle status update end to end: a telematics
// message published on the broker must land in the fleet store.
func Test_E2E_FleetFeed(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, brokerURL := startMosquitto(ctx, t)
	if cont != nil {
		defer cont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("Mosquitto started at %s", brokerURL)

	store := fleet.NewMemoryStore()
	store.Load(fleet.Snapshot{
		Vehicles: []model.Vehicle{
			{ID: "v-1", MaxVolumeM3: 20, MaxWeightKg: 3000, Status: model.VehicleAvailable},
		},
	})

	feed, err := mqtt.NewFleetFeed(mqtt.FeedConfig{
		Enabled:  true,
		Broker:   brokerURL,
		ClientID: "e2e-feed",
		Topic:    "fleet/status",
		QoS:      1,
	}, store)
	if err != nil {
		t.Fatalf("fleet feed: %v", err)
	}
	defer feed.Disconnect()

	opts := paho.NewClientOptions().AddBroker(brokerURL).SetClientID("e2e-telematics")
	pub := paho.NewClient(opts)
	if token := pub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("publisher connect: %v", token.Error())
	}
	defer pub.Disconnect(250)

	payload := `{"vehicle_id":"v-1","status":"maintenance"}`
	if token := pub.Publish("fleet/status", 1, false, payload); token.Wait() && token.Error() != nil {
		t.Fatalf("publish: %v", token.Error())
	}

	deadline := time.After(10 * time.Second)
	for {
		v, ok := store.Vehicle("v-1")
		if ok && v.Status == model.VehicleMaintenance {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("status update never reached the store, vehicle is %s", v.Status)
		case <-time.After(100 * time.Millisecond):
		}
	}
}
