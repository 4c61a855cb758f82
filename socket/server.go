package socket

import (
	"context"
	"log"

	"reachout_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// SendMessagePayload is what a device emits on "sendMessage".
type SendMessagePayload struct {
	ThreadID string `json:"threadId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// NewSocketServer initializes the Socket.IO server. Each thread is a room;
// a message sent through the socket runs the same safety-filter + append
// path as the REST route, then fans out to the room.
func NewSocketServer(threads *services.ThreadService, safety *services.SafetyService) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		threadID := data["threadId"]
		if threadID == "" {
			log.Println("❌ Invalid threadId in join request")
			return
		}
		log.Printf("👥 Socket %s joined thread %s\n", c.ID(), threadID)
		c.Join(threadID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, data map[string]string) {
		threadID := data["threadId"]
		if threadID == "" {
			return
		}
		c.Leave(threadID)
	})

	server.OnEvent("/", "sendMessage", func(c socketio.Conn, payload SendMessagePayload) {
		ctx := context.Background()

		filtered := safety.FilterMessage(ctx, payload.Text)
		messageID, err := threads.Send(ctx, payload.ThreadID, payload.SenderID, filtered.TextRedacted)
		if err != nil {
			log.Printf("❌ Socket send failed for thread %s: %v", payload.ThreadID, err)
			c.Emit("sendError", map[string]string{"threadId": payload.ThreadID, "error": err.Error()})
			return
		}

		server.BroadcastToRoom("/", payload.ThreadID, "newMessage", map[string]interface{}{
			"messageId": messageID,
			"threadId":  payload.ThreadID,
			"senderId":  payload.SenderID,
			"text":      filtered.TextRedacted,
			"flags":     filtered.Flags,
		})
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("👋 Socket disconnected:", reason)
	})

	return server
}
