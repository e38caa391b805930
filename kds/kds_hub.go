// Package kds pushes booking, order and table changes to kitchen display
// clients connected over WebSocket.
package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/queue"
	"github.com/yeremiapane/smartserve/utils"
)

// Event types
const (
	EventOrderCreate   = "order_create"
	EventOrderUpdate   = "order_update"
	EventOrderDelete   = "order_delete"
	EventBookingCreate = "booking_create"
	EventBookingUpdate = "booking_update"
	EventBookingDelete = "booking_delete"
	EventTableCreate   = "table_create"
	EventTableUpdate   = "table_update"
	EventTableDelete   = "table_delete"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// KDSHub holds every connected kitchen display. Writes to a connection are
// serialised by the hub mutex.
type KDSHub struct {
	clients map[*websocket.Conn]string // conn -> employee id
	mutex   sync.Mutex
}

var kdsHub = KDSHub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, employeeID string) {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()
	kdsHub.clients[conn] = employeeID
	utils.InfoLogger.Printf("KDS client %s connected (%d clients)", employeeID, len(kdsHub.clients))
}

func UnregisterClient(conn *websocket.Conn) {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()
	if _, ok := kdsHub.clients[conn]; ok {
		delete(kdsHub.clients, conn)
		conn.Close()
	}
}

// ClientCount returns the number of connected displays.
func ClientCount() int {
	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()
	return len(kdsHub.clients)
}

func BroadcastTableCreate(table models.Table) {
	broadcast(Message{Event: EventTableCreate, Data: table})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func BroadcastTableDelete(tableID uint) {
	broadcast(Message{Event: EventTableDelete, Data: map[string]uint{"id": tableID}})
}

func BroadcastMessage(msg Message) {
	broadcast(msg)
}

var routingEvents = map[string]string{
	queue.BookingCreated: EventBookingCreate,
	queue.BookingUpdated: EventBookingUpdate,
	queue.BookingDeleted: EventBookingDelete,
	queue.OrderCreated:   EventOrderCreate,
	queue.OrderUpdated:   EventOrderUpdate,
	queue.OrderDeleted:   EventOrderDelete,
}

// Publisher relays booking and order events to the connected displays.
type Publisher struct{}

func (Publisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	name, ok := routingEvents[routingKey]
	if !ok {
		return nil
	}
	broadcast(Message{Event: name, Data: event})
	return nil
}

func broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	kdsHub.mutex.Lock()
	defer kdsHub.mutex.Unlock()

	for conn, employeeID := range kdsHub.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to KDS client %s: %v", msg.Event, employeeID, err)
			delete(kdsHub.clients, conn)
			conn.Close()
		}
	}
}
