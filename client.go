package main

import (
	"time"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/kaspanet/kaspad/infrastructure/network/rpcclient"
	"github.com/pkg/errors"

	"github.com/vecno-foundation/vecnominer/infrastructure/logger"
)

const minerTimeout = 10 * time.Second

type minerClient struct {
	*rpcclient.RPCClient

	cfg             *configFlags
	newTemplateChan chan struct{}
}

func (mc *minerClient) connect() error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "minerClient.connect")
	defer onEnd()

	rpcClient, err := rpcclient.NewRPCClient(mc.cfg.RPCServer)
	if err != nil {
		return err
	}
	rpcClient.SetTimeout(minerTimeout)
	mc.RPCClient = rpcClient

	getInfoResponse, err := rpcClient.GetInfo()
	if err != nil {
		return errors.Wrap(err, "error making GetInfo request")
	}
	log.Infof("Connected to %s running version %s", mc.cfg.RPCServer, getInfoResponse.ServerVersion)

	err = rpcClient.RegisterForNewBlockTemplateNotifications(func(_ *appmessage.NewBlockTemplateNotificationMessage) {
		select {
		case mc.newTemplateChan <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return errors.Wrap(err, "error requesting new-template notifications")
	}

	err = rpcClient.RegisterForBlockAddedNotifications(func(_ *appmessage.BlockAddedNotificationMessage) {
		select {
		case mc.newTemplateChan <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return errors.Wrap(err, "error requesting block-added notifications")
	}

	return nil
}

func newMinerClient(cfg *configFlags) (*minerClient, error) {
	minerClient := &minerClient{
		cfg: cfg,
		// The channel is a coalescing signal: a pending refresh absorbs
		// any further notifications until it is consumed.
		newTemplateChan: make(chan struct{}, 1),
	}

	err := minerClient.connect()
	if err != nil {
		return nil, err
	}

	return minerClient, nil
}
