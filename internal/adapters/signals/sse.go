package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/plnevents/pkg/logger"
)

// ServeHTTP streams signals as Server-Sent Events.
func (b *Bus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	sub, err := b.Subscribe()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer b.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	b.writeEvent(r.Context(), w, flusher, Signal{ID: sub.ID(), Type: "connected", Timestamp: b.now()})

	for {
		select {
		case sig, open := <-sub.C():
			if !open {
				return
			}
			b.writeEvent(r.Context(), w, flusher, sig)
		case <-r.Context().Done():
			return
		}
	}
}

func (b *Bus) writeEvent(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sig Signal) {
	data, err := json.Marshal(sig)
	if err != nil {
		b.log.Error(ctx, "marshal signal", logger.Error(err))
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", sig.Type)
	if sig.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", sig.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
