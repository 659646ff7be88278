package gaugeserver

import (
	"crypto/sha256"
	"crypto/subtle"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/gaugemgr"
	"github.com/gaugesuite/emission-gauge-server/metrics"
	"github.com/gaugesuite/emission-gauge-server/mintmgr"
	"github.com/gaugesuite/emission-gauge-server/utils"
	"github.com/gaugesuite/emission-gauge-server/weightmgr"

	"github.com/gorilla/websocket"
)

const (
	// rpcAuthTimeoutSeconds is the number of seconds a connection to the
	// RPC server is allowed to stay open without authenticating before it
	// is closed.
	rpcAuthTimeoutSeconds = 10
)

var timeZeroVal time.Time

// Commands that are available to a limited user.
var rpcLimited = map[string]struct{}{
	"version":             {},
	"getstatus":           {},
	"mint":                {},
	"mintmany":            {},
	"minted":              {},
	"integratefraction":   {},
	"deposit":             {},
	"withdraw":            {},
	"getposition":         {},
	"getmintevents":       {},
	"gaugerelativeweight": {},
	"checkpointgauge":     {},
	"getgauges":           {},
	"gettypes":            {},
}

type commandHandler func(*GaugeServer, interface{}, <-chan struct{}) (interface{}, error)

// rpcHandlers maps RPC command strings to appropriate handler functions.
var rpcHandlers map[string]commandHandler
var rpcHandlersBeforeInit = map[string]commandHandler{
	"version":   handleVersion,
	"getstatus": handleGetStatus,

	"mint":              handleMint,
	"mintmany":          handleMintMany,
	"minted":            handleMinted,
	"integratefraction": handleIntegrateFraction,
	"getmintevents":     handleGetMintEvents,

	"deposit":     handleDeposit,
	"withdraw":    handleWithdraw,
	"getposition": handleGetPosition,

	"addtype":             handleAddType,
	"addgauge":            handleAddGauge,
	"changetypeweight":    handleChangeTypeWeight,
	"changegaugeweight":   handleChangeGaugeWeight,
	"gaugerelativeweight": handleGaugeRelativeWeight,
	"checkpointgauge":     handleCheckpointGauge,
	"getgauges":           handleGetGauges,
	"gettypes":            handleGetTypes,

	"commitnewrate":         handleCommitNewRate,
	"changeadmin":           handleChangeAdmin,
	"acceptadmin":           handleAcceptAdmin,
	"changeemergencyreturn": handleChangeEmergencyReturn,
	"recoverbalance":        handleRecoverBalance,
}

// simpleAddr implements the net.Addr interface with two struct fields.
type simpleAddr struct {
	net, addr string
}

// String returns the address.
//
// This is part of the net.Addr interface.
func (a simpleAddr) String() string {
	return a.addr
}

// Network returns the network.
//
// This is part of the net.Addr interface.
func (a simpleAddr) Network() string {
	return a.net
}

// Ensure simpleAddr implements the net.Addr interface.
var _ net.Addr = simpleAddr{}

// ConfigGaugeServer holds everything the RPC server needs to listen and
// authenticate.
type ConfigGaugeServer struct {
	ListenersString  []string
	Listeners        []net.Listener
	RPCUser          string
	RPCPass          string
	RPCLimitUser     string
	RPCLimitPass     string
	RPCMaxClients    int
	RPCMaxWebsockets int
	RPCCert          string
	RPCKey           string
	DisableTLS       bool
}

// GaugeServer serves the JSON-RPC surface of the emission core over plain
// HTTP POST and websocket connections.
type GaugeServer struct {
	started      int32
	shutdown     int32
	cfg          ConfigGaugeServer
	authsha      [sha256.Size]byte
	limitauthsha [sha256.Size]byte

	clock     *epochclock.Clock
	weightMgr *weightmgr.WeightManager
	gaugeMgr  *gaugemgr.GaugeManager
	mintMgr   *mintmgr.MintManager

	numClients   int32
	numWsClients int32
	statusLines  map[int]string
	statusLock   sync.RWMutex
	wg           sync.WaitGroup
	startTime    int64
	quit         chan int

	requestProcessShutdown chan struct{}
}

// parseListeners determines whether each listen address is IPv4 and IPv6 and
// returns a slice of appropriate net.Addrs to listen on with TCP. It also
// properly detects addresses which apply to "all interfaces" and adds the
// address as both IPv4 and IPv6.
func parseListeners(addrs []string) ([]net.Addr, error) {
	netAddrs := make([]net.Addr, 0, len(addrs)*2)
	for _, addr := range addrs {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// Shouldn't happen due to already being normalized.
			return nil, err
		}

		// Empty host is both IPv4 and IPv6.
		if host == "" {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
			continue
		}

		// Strip IPv6 zone id if present since net.ParseIP does not
		// handle it.
		zoneIndex := -1
		for i, r := range host {
			if r == '%' {
				zoneIndex = i
				break
			}
		}
		if zoneIndex > 0 {
			host = host[:zoneIndex]
		}

		ip := net.ParseIP(host)
		if ip == nil {
			hostAddrs, err := net.LookupHost(host)
			if err != nil {
				return nil, err
			}
			ip = net.ParseIP(hostAddrs[0])
			if ip == nil {
				return nil, fmt.Errorf("cannot resolve IP address for host '%s'", host)
			}
		}

		if ip.To4() == nil {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
		} else {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
		}
	}
	return netAddrs, nil
}

// setupRPCListeners returns a slice of listeners that are configured for use
// with the RPC server depending on the configuration settings for listen
// addresses and TLS.
func setupRPCListeners(listenersString []string, keyFile string, certFile string, disableTLS bool) ([]net.Listener, error) {
	listenFunc := net.Listen
	if !disableTLS {
		keypair, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, err
		}

		tlsConfig := tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}

		// Change the standard net.Listen function to the tls one.
		listenFunc = func(net string, laddr string) (net.Listener, error) {
			return tls.Listen(net, laddr, &tlsConfig)
		}
	}

	netAddrs, err := parseListeners(listenersString)
	if err != nil {
		return nil, err
	}

	listeners := make([]net.Listener, 0, len(netAddrs))
	for _, addr := range netAddrs {
		listener, err := listenFunc(addr.Network(), addr.String())
		if err != nil {
			log.Warnf("Can't listen on %s: %v", addr, err)
			continue
		}
		listeners = append(listeners, listener)
	}

	return listeners, nil
}

// NewGaugeServer returns a new instance of the GaugeServer struct.
func NewGaugeServer(config *ConfigGaugeServer, clock *epochclock.Clock,
	weightMgr *weightmgr.WeightManager, gaugeMgr *gaugemgr.GaugeManager,
	mintMgr *mintmgr.MintManager) (*GaugeServer, error) {

	rpcListeners, err := setupRPCListeners(config.ListenersString, config.RPCKey,
		config.RPCCert, config.DisableTLS)
	if err != nil {
		return nil, err
	}
	if len(rpcListeners) == 0 {
		return nil, errors.New("gauge RPCS: no valid listen address")
	}
	config.Listeners = rpcListeners

	rpc := GaugeServer{
		startTime:              time.Now().Unix(),
		cfg:                    *config,
		clock:                  clock,
		weightMgr:              weightMgr,
		gaugeMgr:               gaugeMgr,
		mintMgr:                mintMgr,
		statusLines:            make(map[int]string),
		requestProcessShutdown: make(chan struct{}),
		quit:                   make(chan int),
	}
	if config.RPCUser != "" && config.RPCPass != "" {
		login := config.RPCUser + ":" + config.RPCPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		rpc.authsha = sha256.Sum256([]byte(auth))
	}
	if config.RPCLimitUser != "" && config.RPCLimitPass != "" {
		login := config.RPCLimitUser + ":" + config.RPCLimitPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		rpc.limitauthsha = sha256.Sum256([]byte(auth))
	}

	return &rpc, nil
}

// RequestedProcessShutdown returns a channel that is sent to when an
// authorized RPC client requests the process to shutdown.
func (svr *GaugeServer) RequestedProcessShutdown() <-chan struct{} {
	return svr.requestProcessShutdown
}

// jsonRPCRead handles reading and responding to RPC messages.
func (svr *GaugeServer) jsonRPCRead(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	if atomic.LoadInt32(&svr.shutdown) != 0 {
		return
	}

	// Read and close the JSON-RPC request body from the caller.
	body, err := ioutil.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		errCode := http.StatusBadRequest
		http.Error(w, fmt.Sprintf("%d error reading JSON message: %v",
			errCode, err), errCode)
		return
	}

	// Hijack the connection from the HTTP server, clear the read deadline,
	// and handle writing the response manually.
	hj, ok := w.(http.Hijacker)
	if !ok {
		errMsg := "webserver doesn't support hijacking"
		log.Warnf(errMsg)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+errMsg, errCode)
		return
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		log.Warnf("Failed to hijack HTTP connection: %v", err)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+err.Error(), errCode)
		return
	}
	defer conn.Close()
	defer buf.Flush()
	conn.SetReadDeadline(timeZeroVal)

	// Attempt to parse the raw body into a JSON-RPC request.
	var responseID interface{}
	var jsonErr error
	var result interface{}
	var request gaugejson.Request
	if err := json.Unmarshal(body, &request); err != nil {
		jsonErr = &gaugejson.RPCError{
			Code:    gaugejson.ErrRPCParse.Code,
			Message: "Failed to parse request: " + err.Error(),
		}
	}
	if jsonErr == nil {
		if request.ID == nil {
			return
		}
		responseID = request.ID

		// Setup a close notifier. Since the connection is hijacked, the
		// CloseNotifier on the ResponseWriter is not available.
		closeChan := make(chan struct{}, 1)
		go func() {
			_, err := conn.Read(make([]byte, 1))
			if err != nil {
				close(closeChan)
			}
		}()

		// Check if the user is limited and set error if method unauthorized.
		if !isAdmin {
			if _, ok := rpcLimited[request.Method]; !ok {
				jsonErr = &gaugejson.RPCError{
					Code:    gaugejson.ErrRPCInvalidParams.Code,
					Message: "limited user not authorized for this method",
				}
			}
		}

		if jsonErr == nil {
			parsedCmd := parseCmd(&request)
			if parsedCmd.err != nil {
				jsonErr = parsedCmd.err
			} else {
				result, jsonErr = svr.standardCmdResult(parsedCmd, closeChan)
			}
		}
	}

	if result == nil && jsonErr == nil {
		jsonErr = gaugejson.ErrRPCInternal
	}
	// Marshal the response.
	msg, err := createMarshalledReply(responseID, result, jsonErr)
	if err != nil {
		log.Errorf("Failed to marshal reply: %v", err)
		return
	}

	// Write the response.
	err = svr.writeHTTPResponseHeaders(r, w.Header(), http.StatusOK, buf)
	if err != nil {
		log.Error(err)
		return
	}
	if _, err := buf.Write(msg); err != nil {
		log.Errorf("Failed to write marshalled reply: %v", err)
	}

	// Terminate with newline to maintain compatibility.
	if err := buf.WriteByte('\n'); err != nil {
		log.Errorf("Failed to append terminating newline to reply: %v", err)
	}
}

// writeHTTPResponseHeaders writes the necessary response headers prior to
// writing an HTTP body given a request to use for protocol negotiation,
// headers to write, a status code, and a writer.
func (svr *GaugeServer) writeHTTPResponseHeaders(req *http.Request, headers http.Header, code int, w io.Writer) error {
	_, err := io.WriteString(w, svr.httpStatusLine(req, code))
	if err != nil {
		return err
	}

	err = headers.Write(w)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, "\r\n")
	return err
}

// httpStatusLine returns a response Status-Line (RFC 2616 Section 6.1) for
// the given request and response status code.
func (svr *GaugeServer) httpStatusLine(req *http.Request, code int) string {
	// Fast path:
	key := code
	proto11 := req.ProtoAtLeast(1, 1)
	if !proto11 {
		key = -key
	}
	svr.statusLock.RLock()
	line, ok := svr.statusLines[key]
	svr.statusLock.RUnlock()
	if ok {
		return line
	}

	// Slow path:
	proto := "HTTP/1.0"
	if proto11 {
		proto = "HTTP/1.1"
	}
	codeStr := strconv.Itoa(code)
	text := http.StatusText(code)
	if text != "" {
		line = proto + " " + codeStr + " " + text + "\r\n"
		svr.statusLock.Lock()
		svr.statusLines[key] = line
		svr.statusLock.Unlock()
	} else {
		text = "status code " + codeStr
		line = proto + " " + codeStr + " " + text + "\r\n"
	}

	return line
}

// Start is used by server.go to start the rpc listener.
func (svr *GaugeServer) Start() {
	if atomic.AddInt32(&svr.started, 1) != 1 {
		return
	}

	log.Trace("Starting gauge RPC server...")
	rpcServeMux := http.NewServeMux()
	httpServer := &http.Server{
		Handler: rpcServeMux,

		// Timeout connections which don't complete the initial handshake
		// within the allowed timeframe.
		ReadTimeout: time.Second * rpcAuthTimeoutSeconds,
	}

	// Http endpoint.
	rpcServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.Header().Set("Content-Type", "application/json")
		r.Close = true

		// Limit the number of connections to max allowed.
		if svr.limitConnections(w, r.RemoteAddr) {
			return
		}

		// Keep track of the number of connected clients.
		svr.incrementClients()
		defer svr.decrementClients()
		_, isAdmin, err := svr.checkAuth(r, true)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		// Read and respond to the request.
		svr.jsonRPCRead(w, r, isAdmin)
	})

	// Websocket endpoint.
	rpcServeMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		authenticated, isAdmin, err := svr.checkAuth(r, false)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		// Attempt to upgrade the connection to a websocket connection using
		// the default size for read/write buffers.
		ws, err := websocket.Upgrade(w, r, nil, 0, 0)
		if err != nil {
			if _, ok := err.(websocket.HandshakeError); !ok {
				log.Errorf("Unexpected websocket error: %v", err)
			}
			http.Error(w, "400 Bad Request.", http.StatusBadRequest)
			return
		}
		svr.WebsocketHandler(ws, r.RemoteAddr, authenticated, isAdmin)
	})

	// Metrics endpoint, admin only.
	rpcServeMux.Handle("/metrics", svr.requireAdminHandler(metrics.Handler()))

	for _, listener := range svr.cfg.Listeners {
		svr.wg.Add(1)
		go func(listener net.Listener) {
			tlsState := "on"
			if svr.cfg.DisableTLS {
				tlsState = "off"
			}
			log.Infof("Gauge RPC server listening on %s (TLS %s)", listener.Addr(), tlsState)
			httpServer.Serve(listener)
			log.Tracef("Gauge RPC listener done for %s", listener.Addr())
			svr.wg.Done()
		}(listener)
	}
}

// Stop is used by server.go to stop the rpc listener.
func (svr *GaugeServer) Stop() error {
	if atomic.AddInt32(&svr.shutdown, 1) != 1 {
		log.Infof("Gauge RPC server is already in the process of shutting down")
		return nil
	}
	log.Warnf("Gauge RPC server shutting down...")
	for _, listener := range svr.cfg.Listeners {
		err := listener.Close()
		if err != nil {
			log.Errorf("Problem shutting down gauge RPC server: %v", err)
			return err
		}
	}
	close(svr.quit)
	svr.wg.Wait()
	log.Infof("Gauge RPC server shutdown complete")
	return nil
}

// requireAdminHandler wraps an http.Handler behind the admin basic auth
// check.
func (svr *GaugeServer) requireAdminHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, isAdmin, err := svr.checkAuth(r, true)
		if err != nil || !isAdmin {
			jsonAuthFail(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitConnections responds with a 503 service unavailable and returns true
// if adding another client would exceed the maximum allow RPC clients.
//
// This function is safe for concurrent access.
func (svr *GaugeServer) limitConnections(w http.ResponseWriter, remoteAddr string) bool {
	if int(atomic.LoadInt32(&svr.numClients)+1) > svr.cfg.RPCMaxClients {
		log.Infof("Max RPC clients exceeded [%d] - "+
			"disconnecting client %s", svr.cfg.RPCMaxClients,
			remoteAddr)
		http.Error(w, "503 Too busy.  Try again later.",
			http.StatusServiceUnavailable)
		return true
	}
	return false
}

// incrementClients adds one to the number of connected RPC clients. Note
// this only applies to standard clients. Websocket clients have their own
// limits and are tracked separately.
//
// This function is safe for concurrent access.
func (svr *GaugeServer) incrementClients() {
	atomic.AddInt32(&svr.numClients, 1)
}

// decrementClients subtracts one from the number of connected RPC clients.
//
// This function is safe for concurrent access.
func (svr *GaugeServer) decrementClients() {
	atomic.AddInt32(&svr.numClients, -1)
}

// checkAuth checks the HTTP Basic authentication supplied by a client
// against the configured credentials.
//
// This check is time-constant.
//
// The first bool return value signifies auth success and the second whether
// the user has admin rights.
func (svr *GaugeServer) checkAuth(r *http.Request, require bool) (bool, bool, error) {
	authhdr := r.Header["Authorization"]
	if len(authhdr) <= 0 {
		if require {
			log.Warnf("RPC authentication failure from %s", r.RemoteAddr)
			return false, false, errors.New("auth failure")
		}

		return false, false, nil
	}

	authsha := sha256.Sum256([]byte(authhdr[0]))

	// Check for limited auth first as in environments with limited users,
	// those are probably expected to have a higher volume of calls.
	limitcmp := subtle.ConstantTimeCompare(authsha[:], svr.limitauthsha[:])
	if limitcmp == 1 {
		return true, false, nil
	}

	cmp := subtle.ConstantTimeCompare(authsha[:], svr.authsha[:])
	if cmp == 1 {
		return true, true, nil
	}

	log.Warnf("RPC authentication failure from %s", r.RemoteAddr)
	return false, false, errors.New("auth failure")
}

// jsonAuthFail sends a message back to the client if the http auth is
// rejected.
func jsonAuthFail(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Basic realm="emission gauge server"`)
	http.Error(w, "401 Unauthorized.", http.StatusUnauthorized)
}

// createMarshalledReply returns a new marshalled JSON-RPC response given the
// passed parameters. It will automatically convert errors that are not of
// the type *gaugejson.RPCError to the appropriate type as needed.
func createMarshalledReply(id, result interface{}, replyErr error) ([]byte, error) {
	var jsonErr *gaugejson.RPCError
	if replyErr != nil {
		if jErr, ok := replyErr.(*gaugejson.RPCError); ok {
			jsonErr = jErr
		} else {
			jsonErr = internalRPCError(replyErr.Error(), "")
		}
	}

	return gaugejson.MarshalResponse(id, result, jsonErr)
}

// internalRPCError is a convenience function to convert an internal error to
// an RPC error with the appropriate code set. It also logs the error to the
// RPC server subsystem since internal errors really should not occur.
func internalRPCError(errStr, context string) *gaugejson.RPCError {
	logStr := errStr
	if context != "" {
		logStr = context + ": " + errStr
	}
	log.Error(logStr)
	return gaugejson.NewRPCError(gaugejson.ErrRPCInternal.Code, errStr)
}

// parsedRPCCmd represents a JSON-RPC request object that has been parsed
// into a known concrete command along with any error that might have
// happened while parsing it.
type parsedRPCCmd struct {
	id     interface{}
	method string
	cmd    interface{}
	err    *gaugejson.RPCError
}

// parseCmd parses a JSON-RPC request object into a known concrete command.
// The err field of the returned parsedRPCCmd struct will contain an RPC
// error that is suitable for use in replies if the command is invalid.
func parseCmd(request *gaugejson.Request) *parsedRPCCmd {
	var parsedCmd parsedRPCCmd
	parsedCmd.id = request.ID
	parsedCmd.method = request.Method

	cmd, err := gaugejson.UnmarshalCmd(request)
	if err != nil {
		if jerr, ok := err.(*gaugejson.RPCError); ok {
			parsedCmd.err = jerr
			return &parsedCmd
		}
		parsedCmd.err = gaugejson.NewRPCError(
			gaugejson.ErrRPCInvalidParams.Code, err.Error())
		return &parsedCmd
	}

	parsedCmd.cmd = cmd
	return &parsedCmd
}

// standardCmdResult runs the appropriate handler to reply to the command.
// Any commands which are not recognized or not implemented will return an
// error suitable for use in replies.
func (svr *GaugeServer) standardCmdResult(cmd *parsedRPCCmd, closeChan <-chan struct{}) (result interface{}, err error) {
	// Recovery
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Panic from %v handler: %v\n", cmd.method, r)
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			log.Errorf("Stack Trace ==>\n %s\n", string(buf[:n]))
			log.Infof("Recovering...")
			// Dump panic file
			_ = utils.DumpPanicInfo(fmt.Sprintf("%v", r) + "\n" + string(buf[:n]))
			result = nil
			err = gaugejson.ErrRPCInternal
		}
	}()

	handler, ok := rpcHandlers[cmd.method]
	if !ok {
		return nil, gaugejson.ErrRPCMethodNotFound
	}

	start := time.Now()
	result, err = handler(svr, cmd.cmd, closeChan)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveRPCRequest(cmd.method, status, time.Since(start))
	return result, err
}

func init() {
	rpcHandlers = rpcHandlersBeforeInit
}
