package app

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/halls510/developerstore-sales-api-sub001/configs"
)

// InitFulfillmentConn dials the fulfillment gateway and returns the conn
// plus a cleanup.
func InitFulfillmentConn(cfg configs.Config) (*grpc.ClientConn, func(), error) {
	dialTimeout := cfg.Fulfillment.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	opts := []grpc.DialOption{
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  200 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   5 * time.Second,
			},
			MinConnectTimeout: dialTimeout,
		}),
	}

	if cfg.Fulfillment.UseTLS {
		var creds credentials.TransportCredentials
		if cfg.Fulfillment.CACertPath != "" {
			pem, err := os.ReadFile(cfg.Fulfillment.CACertPath)
			if err != nil {
				return nil, nil, err
			}
			pool := x509.NewCertPool()
			if ok := pool.AppendCertsFromPEM(pem); !ok {
				return nil, nil, errBadCACert
			}
			tlsCfg := &tls.Config{RootCAs: pool}
			if sn := cfg.Fulfillment.ServerName; sn != "" {
				tlsCfg.ServerName = sn
			}
			creds = credentials.NewTLS(tlsCfg)
		} else {
			creds = credentials.NewClientTLSFromCert(nil, cfg.Fulfillment.ServerName)
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	if n := cfg.Fulfillment.MaxRecvBytes; n > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(n)))
	}
	if n := cfg.Fulfillment.MaxSendBytes; n > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(n)))
	}

	conn, err := grpc.NewClient(cfg.Fulfillment.Target, opts...)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = conn.Close() }
	return conn, cleanup, nil
}

// FulfillmentProbe checks the gateway's gRPC health service; wired into
// /healthz so readiness reflects the downstream.
func FulfillmentProbe(conn *grpc.ClientConn, timeout time.Duration) func() error {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	client := healthpb.NewHealthClient(conn)
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			return err
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("fulfillment gateway reports %s", resp.GetStatus())
		}
		return nil
	}
}

var errBadCACert = errors.New("unable to parse CA cert")
