package nats

import (
	"os"
	"sync"

	natsgo "github.com/nats-io/nats.go"
)

type closeFunc = func()

// Connector creates the underlying NATS connection. The returned close
// function releases the caller's use of it.
type Connector func() (nc *natsgo.Conn, close closeFunc, err error)

// ConnectURL connects to the given NATS URL.
func ConnectURL(natsURL string) Connector {
	return func() (*natsgo.Conn, closeFunc, error) {
		nc, err := natsgo.Connect(
			natsURL,
			natsgo.Name("vrtx"),
			natsgo.MaxReconnects(3),
		)
		if err != nil {
			return nil, nil, err
		}
		return nc, func() { nc.Close() }, nil
	}
}

// ConnectDefault connects to $NATS_URL, falling back to the library default.
func ConnectDefault() Connector {
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		return ConnectURL(natsURL)
	}
	return ConnectURL(natsgo.DefaultURL)
}

// ReuseConnection shares one connection between all callers of the returned
// Connector. The connection is established on first use and closed again
// once every caller has released it; a later call reconnects.
func ReuseConnection(connect Connector) Connector {
	var (
		mu     sync.Mutex
		nc     *natsgo.Conn
		closer closeFunc
		leases int
	)

	release := func() {
		mu.Lock()
		defer mu.Unlock()
		leases--
		if leases == 0 {
			closer()
			nc = nil
		}
	}

	return func() (*natsgo.Conn, closeFunc, error) {
		mu.Lock()
		defer mu.Unlock()
		if nc == nil {
			var err error
			nc, closer, err = connect()
			if err != nil {
				return nil, nil, err
			}
		}
		leases++
		return nc, release, nil
	}
}
