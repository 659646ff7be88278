package gaugeserver

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/metrics"

	"github.com/gorilla/websocket"
)

// websocketSendBufferSize is the number of elements the send channel can
// queue before blocking.
const websocketSendBufferSize = 50

var errDisconnected = errors.New("websocket client disconnected")

// wsClient provides an abstraction for handling a websocket client. Requests
// are read and handled one at a time per client; replies go out through a
// buffered send channel so a slow reader cannot block the handler.
type wsClient struct {
	sync.Mutex
	svr           *GaugeServer
	conn          *websocket.Conn
	disconnected  bool
	addr          string
	authenticated bool
	isAdmin       bool

	sendChan chan []byte
	quit     chan struct{}
	wg       sync.WaitGroup
}

func newWebsocketClient(svr *GaugeServer, conn *websocket.Conn, remoteAddr string,
	authenticated bool, isAdmin bool) *wsClient {

	return &wsClient{
		svr:           svr,
		conn:          conn,
		addr:          remoteAddr,
		authenticated: authenticated,
		isAdmin:       isAdmin,
		sendChan:      make(chan []byte, websocketSendBufferSize),
		quit:          make(chan struct{}),
	}
}

// WebsocketHandler handles a new websocket client by creating a new
// wsClient, starting it, and blocking until the connection closes. Since it
// blocks, it must be run in a separate goroutine.
func (svr *GaugeServer) WebsocketHandler(conn *websocket.Conn, remoteAddr string,
	authenticated bool, isAdmin bool) {

	// Clear the read deadline that was set before the websocket hijacked
	// the connection.
	conn.SetReadDeadline(timeZeroVal)

	// Limit max number of websocket clients.
	log.Infof("New websocket client %s", remoteAddr)
	if int(atomic.LoadInt32(&svr.numWsClients))+1 > svr.cfg.RPCMaxWebsockets {
		log.Infof("Max websocket clients exceeded [%d] - "+
			"disconnecting client %s", svr.cfg.RPCMaxWebsockets,
			remoteAddr)
		conn.Close()
		return
	}
	atomic.AddInt32(&svr.numWsClients, 1)
	metrics.WSClientConnected()
	defer func() {
		atomic.AddInt32(&svr.numWsClients, -1)
		metrics.WSClientDisconnected()
	}()

	client := newWebsocketClient(svr, conn, remoteAddr, authenticated, isAdmin)
	client.Start()
	client.WaitForShutdown()
	log.Infof("Disconnected websocket client %s", remoteAddr)
}

// Start begins processing input and output messages.
func (c *wsClient) Start() {
	log.Tracef("Starting websocket client %s", c.addr)

	c.wg.Add(2)
	go c.inHandler()
	go c.outHandler()
}

// WaitForShutdown blocks until the websocket client goroutines are stopped
// and the connection is closed.
func (c *wsClient) WaitForShutdown() {
	c.wg.Wait()
}

// Disconnect closes the connection and signals both handler goroutines to
// exit. It may be called multiple times.
func (c *wsClient) Disconnect() {
	c.Lock()
	defer c.Unlock()
	if c.disconnected {
		return
	}

	log.Tracef("Disconnecting websocket client %s", c.addr)
	close(c.quit)
	c.conn.Close()
	c.disconnected = true
}

// inHandler handles all incoming messages for the websocket connection.
func (c *wsClient) inHandler() {
out:
	for {
		select {
		case <-c.quit:
			break out
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if err != io.EOF && !websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Errorf("Websocket receive error from %s: %v", c.addr, err)
			}
			break out
		}

		c.handleMessage(msg)
	}

	c.Disconnect()
	c.wg.Done()
	log.Tracef("Websocket client input handler done for %s", c.addr)
}

// handleMessage parses one raw request, runs its handler and queues the
// reply.
func (c *wsClient) handleMessage(msg []byte) {
	var request gaugejson.Request
	if err := json.Unmarshal(msg, &request); err != nil {
		jsonErr := &gaugejson.RPCError{
			Code:    gaugejson.ErrRPCParse.Code,
			Message: "Failed to parse request: " + err.Error(),
		}
		c.reply(nil, nil, jsonErr)
		return
	}

	// Requests with no ID are notifications; nothing is sent back.
	if request.ID == nil {
		return
	}

	if !c.isAdmin {
		if _, ok := rpcLimited[request.Method]; !ok {
			c.reply(request.ID, nil, &gaugejson.RPCError{
				Code:    gaugejson.ErrRPCInvalidParams.Code,
				Message: "limited user not authorized for this method",
			})
			return
		}
	}

	parsedCmd := parseCmd(&request)
	if parsedCmd.err != nil {
		c.reply(request.ID, nil, parsedCmd.err)
		return
	}

	result, err := c.svr.standardCmdResult(parsedCmd, c.quit)
	if err != nil {
		if jErr, ok := err.(*gaugejson.RPCError); ok {
			c.reply(request.ID, nil, jErr)
		} else {
			c.reply(request.ID, nil, internalRPCError(err.Error(), ""))
		}
		return
	}
	c.reply(request.ID, result, nil)
}

// reply marshals and queues one response for sending.
func (c *wsClient) reply(id interface{}, result interface{}, jsonErr *gaugejson.RPCError) {
	msg, err := gaugejson.MarshalResponse(id, result, jsonErr)
	if err != nil {
		log.Errorf("Failed to marshal reply to %s: %v", c.addr, err)
		return
	}
	if err := c.send(msg); err != nil && err != errDisconnected {
		log.Errorf("Failed to queue reply to %s: %v", c.addr, err)
	}
}

// send queues a message on the out channel unless the client has
// disconnected.
func (c *wsClient) send(msg []byte) error {
	select {
	case c.sendChan <- msg:
		return nil
	case <-c.quit:
		return errDisconnected
	}
}

// outHandler writes queued messages to the websocket connection.
func (c *wsClient) outHandler() {
out:
	for {
		select {
		case msg := <-c.sendChan:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Errorf("Websocket send error to %s: %v", c.addr, err)
				break out
			}

		case <-c.quit:
			break out
		}
	}

	c.Disconnect()
	c.wg.Done()
	log.Tracef("Websocket client output handler done for %s", c.addr)
}
