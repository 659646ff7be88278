package main

import (
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/utils"

	flags "github.com/jessevdk/go-flags"
)

var (
	gaugeServerHomeDir = utils.AppDataDir("emission-gauge-server", false)
	gaugectlHomeDir    = utils.AppDataDir("gaugectl", false)
	defaultConfigFile  = "gaugectl.conf"
	defaultRPCServer   = "localhost"
	defaultRPCCertFile = "gauge.cert"
)

// config defines the configuration options for gaugectl.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	NoTLS        bool   `long:"notls" description:"Disable TLS"`
	RPCServer    string `short:"s" long:"rpcserver" description:"RPC server to connect to"`
	RPCCert      string `short:"c" long:"rpccert" description:"RPC server certificate chain for validation"`
	RPCPassword  string `short:"P" long:"rpcpass" default-mask:"-" description:"RPC password"`
	RPCUser      string `short:"u" long:"rpcuser" description:"RPC username"`
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
	WorkingDir   string `long:"workingdir" description:"Working directory"`
}

// createDefaultConfigFile creates a basic config file at the given destination
// path. For this it tries to read the config file of the gauge server and
// extract the RPC user and password from it.
func createDefaultConfigFile(destinationPath, serverConfigPath string) error {
	// Read the gauge server config
	serverConfigFile, err := os.Open(serverConfigPath)
	if err != nil {
		return err
	}
	defer serverConfigFile.Close()
	content, err := ioutil.ReadAll(serverConfigFile)
	if err != nil {
		return err
	}

	// Extract the admin rpc user
	rpcUserRegexp := regexp.MustCompile(`(?m)^\s*gaugeuser=([^\s]+)`)
	userSubmatches := rpcUserRegexp.FindSubmatch(content)
	if userSubmatches == nil {
		// No user found, nothing to do
		return nil
	}

	// Extract the admin rpc password
	rpcPassRegexp := regexp.MustCompile(`(?m)^\s*gaugepass=([^\s]+)`)
	passSubmatches := rpcPassRegexp.FindSubmatch(content)
	if passSubmatches == nil {
		// No password found, nothing to do
		return nil
	}

	// Create the destination directory if it does not exists
	err = os.MkdirAll(filepath.Dir(destinationPath), 0700)
	if err != nil {
		return err
	}

	// Create the destination file and write the rpcuser and rpcpass to it
	dest, err := os.OpenFile(destinationPath,
		os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer dest.Close()

	destString := fmt.Sprintf("rpcuser=%s\nrpcpass=%s\n",
		string(userSubmatches[1]), string(passSubmatches[1]))

	dest.WriteString(destString)

	return nil
}

// cleanAndExpandPath expands environement variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(gaugectlHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr string) (string, error) {
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		defaultPort := chaincfg.ActiveNetParams.DefaultPort

		return net.JoinHostPort(addr, defaultPort), nil
	}
	return addr, nil
}

func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile: defaultConfigFile,
		RPCServer:  defaultRPCServer,
		RPCCert:    defaultRPCCertFile,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, the version flag, or the list commands flag was specified.  Any
	// errors aside from the help message error can be ignored here since
	// they will be caught by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show options", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version())
		os.Exit(0)
	}

	// Show the available commands and exit if the associated flag was
	// specified.
	if preCfg.ListCommands {
		listCommands()
		os.Exit(0)
	}

	if preCfg.WorkingDir != "" {
		err := os.Chdir(preCfg.WorkingDir)
		if err != nil {
			return nil, nil, err
		}
	}

	// If the config file does not exist, try to seed one from the running
	// server's config.
	if _, err := os.Stat(preCfg.ConfigFile); os.IsNotExist(err) {
		serverConfigPath := filepath.Join(gaugeServerHomeDir, "gauge-server.conf")
		err := createDefaultConfigFile(preCfg.ConfigFile, serverConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating a default "+
				"config file: %v\n", err)
		}
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n",
				err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Handle environment variable expansion in the RPC certificate path.
	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)

	// Add default port to RPC server if needed.
	cfg.RPCServer, err = normalizeAddress(cfg.RPCServer)
	if err != nil {
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
