// Package capture emits analytics events to the ingestion endpoint the way
// the storefront does: fire-and-forget, deduplicated per semantic identity,
// and incapable of surfacing an error to the caller. A tracking outage must
// leave the experience around it completely untouched.
package capture

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tharo/api/models"
)

// Tracker emits events for one Session. Page views fire at most once per
// distinct page URL and product views at most once per distinct productId —
// the guards key on what should semantically re-fire, not on how many times
// a caller happens to invoke them. CTA clicks always fire; every click is a
// new, intentional act.
type Tracker struct {
	endpoint string
	session  *Session
	client   *http.Client

	mu            sync.Mutex
	firedPages    map[string]bool
	firedProducts map[string]bool

	// wg lets tests wait for in-flight sends; callers never need it.
	wg sync.WaitGroup
}

func NewTracker(endpoint string, session *Session) *Tracker {
	return &Tracker{
		endpoint:      endpoint,
		session:       session,
		client:        &http.Client{Timeout: 5 * time.Second},
		firedPages:    make(map[string]bool),
		firedProducts: make(map[string]bool),
	}
}

// PageView records a page view once per distinct page URL.
func (t *Tracker) PageView(url, referrer string) {
	t.mu.Lock()
	if t.firedPages[url] {
		t.mu.Unlock()
		return
	}
	t.firedPages[url] = true
	t.mu.Unlock()

	t.send(models.TrackRequest{
		SessionID: t.session.ID(),
		EventType: models.EventTypePageView,
		URL:       url,
		Referrer:  referrer,
	})
}

// ProductView records a product view once per distinct product. Viewing a
// genuinely new product fires again; re-rendering the same one does not.
func (t *Tracker) ProductView(url, referrer, productID string) {
	if productID == "" {
		return
	}

	t.mu.Lock()
	if t.firedProducts[productID] {
		t.mu.Unlock()
		return
	}
	t.firedProducts[productID] = true
	t.mu.Unlock()

	t.send(models.TrackRequest{
		SessionID: t.session.ID(),
		EventType: models.EventTypeProductView,
		URL:       url,
		Referrer:  referrer,
		ProductID: productID,
	})
}

// CTAClick records a call-to-action click. No one-shot guard: repeat clicks
// are repeat intent. productID is included when the click came from a
// product context, empty otherwise.
func (t *Tracker) CTAClick(url, referrer, productID string) {
	t.send(models.TrackRequest{
		SessionID: t.session.ID(),
		EventType: models.EventTypeCTAClick,
		URL:       url,
		Referrer:  referrer,
		ProductID: productID,
	})
}

// send posts the event asynchronously. Every failure mode — encode,
// transport, non-2xx — is logged and swallowed.
func (t *Tracker) send(req models.TrackRequest) {
	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("Failed to encode tracking event: %v", err)
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		resp, err := t.client.Post(t.endpoint, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("Failed to send tracking event: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Printf("Tracking endpoint returned status %d", resp.StatusCode)
		}
	}()
}

// Flush blocks until all in-flight sends have completed.
func (t *Tracker) Flush() {
	t.wg.Wait()
}
