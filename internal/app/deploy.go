package app

import (
	"context"
	"errors"
	"fmt"

	"pricerelay/internal/config"
	"pricerelay/internal/contract/pricecache"
	"pricerelay/internal/contract/proxy"
	"pricerelay/internal/contract/refstore"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/sirupsen/logrus"
)

// Accounts are the parsed contract and signer accounts of a deployment.
type Accounts struct {
	Owner  host.AccountID
	Keeper host.AccountID
	Ref    host.AccountID
	Proxy  host.AccountID
	Cache  host.AccountID
}

func parseAccounts(cfg config.Contracts) (Accounts, error) {
	var (
		acc Accounts
		err error
	)
	fields := []struct {
		name string
		raw  string
		dst  *host.AccountID
	}{
		{"owner", cfg.Owner, &acc.Owner},
		{"keeper", cfg.Keeper, &acc.Keeper},
		{"ref_account", cfg.RefAccount, &acc.Ref},
		{"proxy_account", cfg.ProxyAccount, &acc.Proxy},
		{"cache_account", cfg.CacheAccount, &acc.Cache},
	}
	for _, f := range fields {
		if *f.dst, err = host.ParseAccountID(f.raw); err != nil {
			return Accounts{}, fmt.Errorf("contracts.%s: %w", f.name, err)
		}
	}
	return acc, nil
}

type deployment struct {
	account  host.AccountID
	contract host.Contract
	args     any
}

// deployContracts registers the rate store, its proxy and the price cache.
// The cache reads through the proxy. Contracts whose state survived a restart
// are attached as they are.
func deployContracts(ctx context.Context, rt *host.Runtime, acc Accounts, ownerGatedOracle bool) error {
	deployments := []deployment{
		{account: acc.Ref, contract: refstore.New()},
		{account: acc.Proxy, contract: proxy.New(), args: proxy.InitArgs{Ref: acc.Ref}},
		{account: acc.Cache, contract: pricecache.New(), args: pricecache.InitArgs{
			Oracle:           acc.Proxy,
			OwnerGatedOracle: ownerGatedOracle,
		}},
	}

	for _, d := range deployments {
		id, err := rt.Deploy(ctx, acc.Owner, d.account, d.contract, d.args)
		if err != nil {
			return fmt.Errorf("deploy %s: %w", d.account, err)
		}
		out, err := rt.Wait(ctx, id)
		if err != nil {
			return fmt.Errorf("deploy %s: %w", d.account, err)
		}
		switch initErr := out.Err(); {
		case initErr == nil:
			logrus.WithField("account", d.account).Info("✅ Contract deployed")
		case errors.Is(initErr, domain.ErrAlreadyInitialized):
			logrus.WithField("account", d.account).Info("✅ Contract attached to existing state")
		default:
			return fmt.Errorf("init %s: %w", d.account, initErr)
		}
	}
	return nil
}
