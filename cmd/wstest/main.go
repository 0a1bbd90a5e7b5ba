// Package main connects notification sockets to a running API and prints
// every event they receive. Useful for checking the ticket exchange and
// hub fan-out end to end, and for load testing with -clients.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"empleos/internal/notifications"

	"github.com/gorilla/websocket"
)

// Metrics tracks the run results.
type Metrics struct {
	ConnectionsAttempted atomic.Int64
	ConnectionsSuccess   atomic.Int64
	ConnectionsFailed    atomic.Int64
	EventsReceived       atomic.Int64
	Errors               atomic.Int64
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	email := flag.String("email", "seeker@example.cl", "Account email")
	password := flag.String("password", "Password123!", "Account password")
	clients := flag.Int("clients", 1, "Number of concurrent sockets")
	duration := flag.Duration("duration", 30*time.Second, "How long to listen")
	quiet := flag.Bool("quiet", false, "Only print the summary")
	flag.Parse()

	log.Printf("Connecting %d socket(s) to %s for %v", *clients, *host, *duration)

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var (
		metrics Metrics
		wg      sync.WaitGroup
	)
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var onEvent func(notifications.Event)
			if !*quiet {
				onEvent = func(ev notifications.Event) {
					log.Printf("[client %d] %s %s#%d %s %s", id, ev.Type, ev.EntityType, ev.EntityID, ev.Status, ev.Message)
				}
			}
			runClient(*host, token, stop, &metrics, onEvent)
		}(i)
		// Tickets are rate limited per user.
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("Interrupted")
	}
	close(stop)
	wg.Wait()

	printMetrics(&metrics)
}

func login(host, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := httpClient.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func issueTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}
	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

// dial exchanges token for a single-use ticket and opens the socket.
func dial(host, token string) (*websocket.Conn, error) {
	ticket, err := issueTicket(host, token)
	if err != nil {
		return nil, err
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     host,
		Path:     "/api/ws/notifications",
		RawQuery: url.Values{"ticket": {ticket}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Path, err)
	}
	return conn, nil
}

// runClient reads events until stop is closed or the server hangs up.
func runClient(host, token string, stop <-chan struct{}, m *Metrics, onEvent func(notifications.Event)) {
	m.ConnectionsAttempted.Add(1)
	conn, err := dial(host, token)
	if err != nil {
		m.ConnectionsFailed.Add(1)
		m.Errors.Add(1)
		log.Printf("connect: %v", err)
		return
	}
	m.ConnectionsSuccess.Add(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var ev notifications.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					select {
					case <-stop:
					default:
						m.Errors.Add(1)
					}
				}
				return
			}
			m.EventsReceived.Add(1)
			if onEvent != nil {
				onEvent(ev)
			}
		}
	}()

	select {
	case <-stop:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
	_ = conn.Close()
}

func printMetrics(m *Metrics) {
	log.Println("--- wstest summary ---")
	log.Printf("Connections attempted: %d", m.ConnectionsAttempted.Load())
	log.Printf("Connections succeeded: %d", m.ConnectionsSuccess.Load())
	log.Printf("Connections failed:    %d", m.ConnectionsFailed.Load())
	log.Printf("Events received:       %d", m.EventsReceived.Load())
	log.Printf("Errors:                %d", m.Errors.Load())
}
