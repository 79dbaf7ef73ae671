package main

// Minimal local receiver for the session security webhook. Run it next to
// the service and point WEBHOOK_URL at it to see ip_change events.

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Only POST method is accepted", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusInternalServerError)
			return
		}
		defer r.Body.Close()

		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			http.Error(w, "Error parsing JSON", http.StatusBadRequest)
			return
		}

		log.Println("Received session event:")
		log.Printf("  Event: %s", data["event"])
		log.Printf("  User ID: %s", data["user_id"])
		log.Printf("  Old IP: %s", data["old_ip"])
		log.Printf("  New IP: %s", data["new_ip"])
		log.Printf("  User Agent: %s", data["user_agent"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Webhook received!"))
	})

	log.Println("Webhook receiver listening on :9000")
	log.Fatal(http.ListenAndServe(":9000", nil))
}
