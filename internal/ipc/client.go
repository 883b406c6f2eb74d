package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

func newClient() *resty.Client {
	path := SocketPath()

	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})

	client.SetBaseURL("http://deskpaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "deskpaper")

	return client
}

func SendStatus() (*StatusResponse, error) {
	client := newClient()
	defer client.Close()

	result := StatusResponse{}

	response, err := client.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}

	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error getting status: %s", response.Status())
	}

	return &result, nil
}

func SendRefresh() error {
	return post("/refresh")
}

func SendStop() error {
	return post("/stop")
}

func post(path string) error {
	client := newClient()
	defer client.Close()

	result := Response{}

	response, err := client.R().SetResult(&result).Post(path)
	if err != nil {
		return err
	}

	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending %s: %s", path, response.Status())
	}

	return nil
}
