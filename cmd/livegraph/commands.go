package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/livegraph/livegraph/pkg/stream"
)

/*
	These commands are convenience CLI tools that operate on a
	running livegraph by calling its REST API and event stream.
*/

type SubCommandArgs struct {
	// base URL of the server, eg. http://localhost:8000/
	Remote string
}

func AddNode(node string, c lg.Config, s SubCommandArgs) error {
	url, err := apiURL(c, s, "/nodes")
	if err != nil {
		return err
	}
	body := map[string]json.RawMessage{"node": nodeArg(node)}
	return printResponse(callAPI("POST", url, body))
}

func AddEdge(from, to string, c lg.Config, s SubCommandArgs) error {
	url, err := apiURL(c, s, "/edges")
	if err != nil {
		return err
	}
	body := map[string]json.RawMessage{"from_node": nodeArg(from), "to_node": nodeArg(to)}
	return printResponse(callAPI("POST", url, body))
}

func Reset(c lg.Config, s SubCommandArgs) error {
	url, err := apiURL(c, s, "/graph")
	if err != nil {
		return err
	}
	return printResponse(callAPI("DELETE", url, nil))
}

func PrintGraph(c lg.Config, s SubCommandArgs) error {
	url, err := apiURL(c, s, "/graph")
	if err != nil {
		return err
	}
	return printResponse(callAPI("GET", url, nil))
}

// Watch prints every event until interrupted or the server goes away.
func Watch(c lg.Config, s SubCommandArgs) error {
	u, err := apiURL(c, s, "/ws")
	if err != nil {
		return err
	}
	u = "ws" + strings.TrimPrefix(u, "http")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := stream.Dial(ctx, u)
	if err != nil {
		return err
	}
	defer client.CloseNow()
	fmt.Println("Watching", u)
	return client.Watch(ctx, func(e stream.WireEvent) error {
		fmt.Println(e)
		return nil
	})
}

// nodeArg turns a command line argument into a node identity: valid JSON
// (1, true, "1") is passed through, anything else is sent as a string.
func nodeArg(arg string) json.RawMessage {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	b, _ := json.Marshal(arg)
	return b
}

// work out the remote URL from args or config and return
// a complete path with our best guess
func apiURL(c lg.Config, s SubCommandArgs, path string) (string, error) {
	base := ""
	if s.Remote != "" {
		base = s.Remote
	} else {
		host := c.WebAPI.Bind
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		base = fmt.Sprintf("http://%s:%s/", host, c.WebAPI.Port)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return u.ResolveReference(p).String(), nil
}

// call the REST API, returning the response body or the API's error
func callAPI(method string, url string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error lg.ErrorInfo `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error.Code != "" {
			return nil, &e.Error
		}
		return nil, fmt.Errorf("unexpected response status code: %d", resp.StatusCode)
	}

	return b, nil
}

func printResponse(b []byte, err error) error {
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if json.Indent(&out, b, "", "  ") != nil {
		out.Reset()
		out.Write(b)
	}
	fmt.Println(out.String())
	return nil
}
