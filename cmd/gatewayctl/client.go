// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ManuGH/dashboard/internal/config"
	"github.com/ManuGH/dashboard/internal/daemon"
	"github.com/ManuGH/dashboard/internal/gateway"
)

// gatewayConfig resolves the Gateway config: flags > env > file > defaults.
func (o *rootOptions) gatewayConfig() (gateway.Config, error) {
	cfg, err := config.NewLoader(o.configPath, "").Load()
	if err != nil {
		return gateway.Config{}, err
	}
	gw := daemon.GatewayConfig(cfg)
	if o.url != "" {
		gw.URL = o.url
	}
	if o.token != "" {
		gw.Credential.Token = o.token
	}
	if o.clientName != "" {
		gw.Credential.ClientName = o.clientName
	}
	return gw, nil
}

func (o *rootOptions) newClient() (*gateway.Client, error) {
	cfg, err := o.gatewayConfig()
	if err != nil {
		return nil, err
	}
	return gateway.New(cfg), nil
}

// printRawJSON indents payload without decoding it, so no field is lost.
func printRawJSON(w io.Writer, payload json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
