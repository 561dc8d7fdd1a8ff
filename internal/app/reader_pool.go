package app

import (
	"context"

	"gitlab.com/TitanInd/otcescrow/internal/handlers/httphandlers"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
)

// ReaderPool dials each network at most once and keeps the connection for the process lifetime
type ReaderPool struct {
	// config
	overrideNetwork string
	overrideURL     string

	// state
	mutex   lib.Mutex
	readers map[string]*contracts.Reader
	clients []*contracts.EthClient

	// deps
	dial func(ctx context.Context, profile networks.Profile) (*contracts.EthClient, error)
	log  interfaces.ILogger
}

func NewReaderPool(overrideNetwork, overrideURL string, log interfaces.ILogger) *ReaderPool {
	return &ReaderPool{
		overrideNetwork: overrideNetwork,
		overrideURL:     overrideURL,
		mutex:           lib.NewMutex(),
		readers:         make(map[string]*contracts.Reader),
		dial:            dialProfile,
		log:             log,
	}
}

func (p *ReaderPool) Get(ctx context.Context, profile networks.Profile) (httphandlers.ChainReader, error) {
	if err := p.mutex.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer p.mutex.Unlock()

	if r, ok := p.readers[profile.Key]; ok {
		return r, nil
	}

	if profile.Key == p.overrideNetwork && p.overrideURL != "" {
		profile.RPCURL = p.overrideURL
	}
	client, err := p.dial(ctx, profile)
	if err != nil {
		return nil, err
	}
	p.log.Infof("connected to %s", profile.Key)

	r := contracts.NewReader(profile, client, p.log.Named(profile.Key))
	p.readers[profile.Key] = r
	p.clients = append(p.clients, client)
	return r, nil
}

func (p *ReaderPool) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, c := range p.clients {
		c.Close()
	}
	p.clients = nil
	p.readers = make(map[string]*contracts.Reader)
}
