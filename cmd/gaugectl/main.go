package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

// commandUsage displays the usage for a specific command.
func commandUsage(method string) {
	fmt.Fprintf(os.Stderr, "Usage:\n  %s %s [params-json]\n", filepath.Base(os.Args[0]), method)
	fmt.Fprintln(os.Stderr, "Params are passed as a single JSON object, "+
		"for example: '{\"gaugeid\":\"pool-a\",\"staker\":\"alice\"}'")
}

// usage displays the general usage when the help flag is not displayed and
// and an invalid command was specified.  The commandUsage function is used
// instead when a valid command was specified.
func usage(errorMessage string) {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> [params-json]\n\n",
		appName)
	fmt.Fprintln(os.Stderr, showHelpMessage)
	fmt.Fprintln(os.Stderr, listCmdMessage)
}

// listCommands prints all methods the server understands, one per line.
func listCommands() {
	for _, method := range gaugejson.RegisteredCmdMethods() {
		fmt.Println(method)
	}
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}
	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}

	method := args[0]

	// Assemble the raw params. The special parameter `-` reads the params
	// object from the next unread line of standard input.
	params := json.RawMessage(`{}`)
	if len(args) > 1 {
		raw := args[1]
		if raw == "-" {
			param, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && err != io.EOF {
				fmt.Fprintf(os.Stderr, "Failed to read data "+
					"from stdin: %v\n", err)
				os.Exit(1)
			}
			raw = strings.TrimRight(param, "\r\n")
		}
		if !json.Valid([]byte(raw)) {
			fmt.Fprintf(os.Stderr, "Invalid params JSON: %v\n", raw)
			commandUsage(method)
			os.Exit(1)
		}
		params = json.RawMessage(raw)
	}

	req := &gaugejson.Request{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	// Reject unknown methods and malformed params locally before bothering
	// the server with them.
	if _, err := gaugejson.UnmarshalCmd(req); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		commandUsage(method)
		os.Exit(1)
	}

	marshalledJSON, err := json.Marshal(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Send the JSON-RPC request to the server using the user-specified
	// connection configuration.
	result, err := sendPostRequest(marshalledJSON, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Choose how to display the result based on its type.
	strResult := string(result)
	if strings.HasPrefix(strResult, "{") || strings.HasPrefix(strResult, "[") {
		var dst bytes.Buffer
		if err := json.Indent(&dst, result, "", "  "); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format result: %v",
				err)
			os.Exit(1)
		}
		fmt.Println(dst.String())
	} else if strings.HasPrefix(strResult, `"`) {
		var str string
		if err := json.Unmarshal(result, &str); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to unmarshal result: %v",
				err)
			os.Exit(1)
		}
		fmt.Println(str)
	} else if strResult != "null" {
		fmt.Println(strResult)
	}
}
