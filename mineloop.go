package main

import (
	nativeerrors "errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/kaspanet/kaspad/infrastructure/network/netadapter/router"
	"github.com/pkg/errors"

	"github.com/vecno-foundation/vecnominer/domain/pow"
	"github.com/vecno-foundation/vecnominer/templatemanager"
	"github.com/vecno-foundation/vecnominer/version"
)

var hashesTried uint64

const logHashRateInterval = 10 * time.Second

func mineLoop(client *minerClient, cfg *configFlags) error {
	rand.Seed(time.Now().UnixNano()) // Seed the global concurrent-safe random source.

	errChan := make(chan error)
	doneChan := make(chan struct{})

	// We don't want to send router.DefaultMaxMessages blocks at once because there's
	// a high chance we'll get disconnected from the node, so we make the channel
	// capacity router.DefaultMaxMessages/2 (we give some slack for getBlockTemplate
	// requests)
	foundBlockChan := make(chan *appmessage.RPCBlock, router.DefaultMaxMessages/2)

	spawn("templatesLoop", func() {
		templatesLoop(client, errChan)
	})

	for i := uint8(0); i < cfg.Threads; i++ {
		spawn("miningWorker", func() {
			miningWorker(cfg.MineWhenNotSynced, foundBlockChan)
		})
	}

	spawn("handleFoundBlock", func() {
		for i := uint64(0); cfg.NumberOfBlocks == 0 || i < cfg.NumberOfBlocks; i++ {
			block := <-foundBlockChan
			err := handleFoundBlock(client, block)
			if err != nil {
				errChan <- err
				return
			}
		}
		doneChan <- struct{}{}
	})

	logHashRate()

	select {
	case err := <-errChan:
		return err
	case <-doneChan:
		return nil
	}
}

func logHashRate() {
	spawn("logHashRate", func() {
		lastCheck := time.Now()
		for range time.Tick(logHashRateInterval) {
			currentHashesTried := atomic.LoadUint64(&hashesTried)
			currentTime := time.Now()
			kiloHashesTried := float64(currentHashesTried) / 1000.0
			hashRate := kiloHashesTried / currentTime.Sub(lastCheck).Seconds()
			log.Infof("Current hash rate is %.2f Khash/s", hashRate)
			lastCheck = currentTime
			// subtract from hashesTried the hashes we already sampled
			atomic.AddUint64(&hashesTried, -currentHashesTried)
		}
	})
}

// miningWorker grinds nonces against the freshest template. Each worker
// clones the shared state and starts from a random nonce, so parallel
// workers cover disjoint stretches of the nonce space with high probability.
func miningWorker(mineWhenNotSynced bool, foundBlockChan chan *appmessage.RPCBlock) {
	for {
		sharedState := getStateForMining(mineWhenNotSynced)
		state := sharedState.Clone()
		state.Nonce = rand.Uint64() // Use the global concurrent-safe random source.
		for templatemanager.Generation() == state.ID {
			state.Nonce++
			atomic.AddUint64(&hashesTried, 1)
			block := state.GenerateBlockIfProofOfWork()
			if block != nil {
				foundBlockChan <- block
				break
			}
		}
	}
}

func getStateForMining(mineWhenNotSynced bool) *pow.State {
	tryCount := 0

	const sleepTime = 500 * time.Millisecond
	const sleepTimeWhenNotSynced = 5 * time.Second

	for {
		tryCount++

		shouldLog := (tryCount-1)%10 == 0
		state, _, isSynced := templatemanager.Get()
		if state == nil {
			if shouldLog {
				log.Info("Waiting for the initial template")
			}
			time.Sleep(sleepTime)
			continue
		}
		if !isSynced && !mineWhenNotSynced {
			if shouldLog {
				log.Warnf("The node is not synced. Skipping current block template")
			}
			time.Sleep(sleepTimeWhenNotSynced)
			continue
		}

		return state
	}
}

func handleFoundBlock(client *minerClient, block *appmessage.RPCBlock) error {
	blockHash, err := pow.BlockHash(block)
	if err != nil {
		return errors.Wrap(err, "error hashing the found block")
	}
	log.Infof("Found block %s with nonce %d", blockHash, block.Header.Nonce)

	domainBlock, err := appmessage.RPCBlockToDomainBlock(block)
	if err != nil {
		return errors.Wrapf(err, "error converting block %s for submission", blockHash)
	}

	rejectReason, err := client.SubmitBlock(domainBlock)
	if err != nil {
		if nativeerrors.Is(err, router.ErrTimeout) {
			log.Warnf("Got timeout while submitting block %s to %s: %s", blockHash, client.Address(), err)
			return client.Reconnect()
		}
		if nativeerrors.Is(err, router.ErrRouteClosed) {
			log.Debugf("Got route is closed while submitting block %s to %s. "+
				"The client is most likely reconnecting", blockHash, client.Address())
			return nil
		}
		if rejectReason == appmessage.RejectReasonIsInIBD {
			const waitTime = 1 * time.Second
			log.Warnf("Block %s was rejected because the node is in IBD. Waiting for %s", blockHash, waitTime)
			time.Sleep(waitTime)
			return nil
		}
		return errors.Wrapf(err, "Error submitting block %s to %s", blockHash, client.Address())
	}
	return nil
}

func templatesLoop(client *minerClient, errChan chan error) {
	extraData := "vecnominer/" + version.Version()
	getBlockTemplate := func() {
		template, err := client.GetBlockTemplate(client.cfg.MiningAddress, extraData)
		if nativeerrors.Is(err, router.ErrTimeout) {
			log.Warnf("Got timeout while requesting block template from %s: %s", client.Address(), err)
			reconnectErr := client.Reconnect()
			if reconnectErr != nil {
				errChan <- reconnectErr
			}
			return
		}
		if nativeerrors.Is(err, router.ErrRouteClosed) {
			log.Debugf("Got route is closed while requesting block template from %s. "+
				"The client is most likely reconnecting", client.Address())
			return
		}
		if err != nil {
			errChan <- errors.Wrapf(err, "Error getting block template from %s", client.Address())
			return
		}
		err = templatemanager.Set(template)
		if err != nil {
			errChan <- errors.Wrapf(err, "Error setting block template from %s", client.Address())
			return
		}
	}

	getBlockTemplate()
	const tickerTime = 500 * time.Millisecond
	ticker := time.NewTicker(tickerTime)
	for {
		select {
		case <-client.newTemplateChan:
			getBlockTemplate()
			ticker.Reset(tickerTime)
		case <-ticker.C:
			getBlockTemplate()
		}
	}
}
