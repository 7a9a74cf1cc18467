package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"pricerelay/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// recentOutcomes bounds how many finished outcomes the runtime keeps itself,
// independent of History.
const recentOutcomes = 1024

type transaction struct {
	outcome  Outcome
	root     *Promise
	inflight int
	done     chan struct{}
}

// Runtime executes contract receipts one at a time on the goroutine running
// Run. Submitting a transaction or a view only enqueues work, so contract code
// never runs concurrently with itself.
type Runtime struct {
	store   Store
	clock   clockwork.Clock
	history History

	ids atomic.Uint64

	mu        sync.Mutex
	contracts map[AccountID]Contract
	queue     []func(context.Context)
	pending   map[uuid.UUID]*transaction
	recent    map[uuid.UUID]Outcome
	evictions []uuid.UUID
	wake      chan struct{}
	stopped   bool
}

func NewRuntime(store Store, clock clockwork.Clock, history History) *Runtime {
	return &Runtime{
		store:     store,
		clock:     clock,
		history:   history,
		contracts: make(map[AccountID]Contract),
		pending:   make(map[uuid.UUID]*transaction),
		recent:    make(map[uuid.UUID]Outcome),
		wake:      make(chan struct{}, 1),
	}
}

// Register attaches c to account without initializing it.
func (r *Runtime) Register(account AccountID, c Contract) error {
	if _, err := ParseAccountID(string(account)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[account]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, account)
	}
	r.contracts[account] = c
	return nil
}

// Deploy registers c and submits its initializer signed by signer.
func (r *Runtime) Deploy(ctx context.Context, signer, account AccountID, c Contract, initArgs any) (uuid.UUID, error) {
	if err := r.Register(account, c); err != nil {
		return uuid.Nil, err
	}
	return r.Submit(ctx, Transaction{Signer: signer, Receiver: account, Method: InitMethod, Args: initArgs})
}

// Submit enqueues tx and returns its id. The outcome is pending until the
// transaction and everything it spawned has executed.
func (r *Runtime) Submit(ctx context.Context, tx Transaction) (uuid.UUID, error) {
	t, err := r.submit(ctx, tx)
	if err != nil {
		return uuid.Nil, err
	}
	return t.outcome.ID, nil
}

func (r *Runtime) submit(ctx context.Context, tx Transaction) (*transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.isStopped() {
		return nil, ErrRuntimeStopped
	}
	if _, err := ParseAccountID(string(tx.Signer)); err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	if tx.Method == "" {
		return nil, fmt.Errorf("%w: empty method", ErrMethodNotFound)
	}
	gas := tx.Gas
	if gas == 0 {
		gas = MaxPrepaidGas
	}
	if gas > MaxPrepaidGas {
		return nil, fmt.Errorf("%w: %d above %d", ErrInvalidGas, gas, MaxPrepaidGas)
	}
	if _, ok := r.contract(tx.Receiver); !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, tx.Receiver)
	}

	t := &transaction{
		outcome: Outcome{
			ID:          uuid.New(),
			Signer:      tx.Signer,
			Receiver:    tx.Receiver,
			Method:      tx.Method,
			Status:      StatusPending,
			SubmittedAt: r.clock.Now(),
		},
		done: make(chan struct{}),
	}
	t.root = &Promise{
		id:          r.newID(),
		receiver:    tx.Receiver,
		method:      tx.Method,
		args:        tx.Args,
		gas:         gas,
		signer:      tx.Signer,
		predecessor: tx.Signer,
		newID:       r.newID,
	}

	r.mu.Lock()
	r.pending[t.outcome.ID] = t
	r.mu.Unlock()
	r.schedule(t, t.root)
	return t, nil
}

// Outcome returns a snapshot of a pending or remembered transaction.
func (r *Runtime) Outcome(id uuid.UUID) (Outcome, error) {
	r.mu.Lock()
	t, ok := r.pending[id]
	if ok {
		o := t.outcome.clone()
		r.mu.Unlock()
		return o, nil
	}
	o, ok := r.recent[id]
	r.mu.Unlock()
	if ok {
		return o.clone(), nil
	}
	if r.history != nil {
		if o, ok := r.history.Get(id); ok {
			return o, nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %s", ErrTxNotFound, id)
}

// Wait blocks until the transaction is final or ctx is done.
func (r *Runtime) Wait(ctx context.Context, id uuid.UUID) (Outcome, error) {
	r.mu.Lock()
	t, ok := r.pending[id]
	r.mu.Unlock()
	if !ok {
		return r.Outcome(id)
	}
	return r.await(ctx, t)
}

// Execute submits tx and waits for its final outcome.
func (r *Runtime) Execute(ctx context.Context, tx Transaction) (Outcome, error) {
	t, err := r.submit(ctx, tx)
	if err != nil {
		return Outcome{}, err
	}
	return r.await(ctx, t)
}

func (r *Runtime) await(ctx context.Context, t *transaction) (Outcome, error) {
	select {
	case <-t.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return t.outcome.clone(), nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// View runs a read-only method on the execution loop. Storage writes and
// outgoing calls fail the view.
func (r *Runtime) View(ctx context.Context, receiver AccountID, method string, args any) (any, error) {
	type reply struct {
		value any
		err   error
	}
	if r.isStopped() {
		return nil, ErrRuntimeStopped
	}
	ch := make(chan reply, 1)
	r.enqueue(func(loopCtx context.Context) {
		cc := &CallContext{
			ctx:       loopCtx,
			store:     r.store,
			current:   receiver,
			prepaid:   MaxPrepaidGas,
			blockTime: uint64(r.clock.Now().UnixNano()),
			view:      true,
			newID:     r.newID,
		}
		value, err := r.invoke(cc, method, args)
		if len(cc.logs) > 0 {
			logrus.WithFields(logrus.Fields{"receiver": receiver, "method": method, "logs": cc.logs}).Debug("view logs")
		}
		ch <- reply{value: value, err: err}
	})
	select {
	case rep := <-ch:
		return rep.value, rep.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run drains the execution queue until ctx is canceled. Transactions still
// pending at that point stay pending.
func (r *Runtime) Run(ctx context.Context) error {
	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
	}()
	for {
		if ctx.Err() != nil {
			return nil
		}
		task := r.dequeue()
		if task == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-r.wake:
			}
			continue
		}
		task(ctx)
	}
}

func (r *Runtime) execute(ctx context.Context, p *Promise) {
	start := r.clock.Now()
	cc := &CallContext{
		ctx:         ctx,
		store:       r.store,
		signer:      p.signer,
		predecessor: p.predecessor,
		current:     p.receiver,
		prepaid:     p.gas,
		blockTime:   uint64(start.UnixNano()),
		newID:       r.newID,
	}
	if p.dependency != nil {
		res := p.dependency.result
		cc.callback = &res
	}

	value, err := r.invoke(cc, p.method, p.args)
	forward, isPromise := value.(*Promise)
	if err == nil && isPromise && !cc.owns(forward) {
		err = fmt.Errorf("%w: returned promise was not created by this call", ErrInvalidArgs)
	}
	if err == nil {
		err = cc.commit()
	}

	receipt := ReceiptOutcome{
		ID:          p.id,
		Receiver:    p.receiver,
		Method:      p.method,
		Predecessor: p.predecessor,
		Status:      StatusSucceeded,
		Logs:        cc.logs,
		GasBurnt:    cc.used,
	}
	if err != nil {
		receipt.Status = StatusFailed
		receipt.Error = err.Error()
		logrus.WithError(err).WithFields(logrus.Fields{
			"tx_id":    p.tx.outcome.ID,
			"receiver": p.receiver,
			"method":   p.method,
		}).Debug("receipt failed")
	}
	metrics.RecordReceipt(string(p.receiver), p.method, string(receipt.Status), r.clock.Since(start))
	r.record(p.tx, receipt)

	switch {
	case err != nil:
		r.resolve(p, PromiseResult{Err: err})
	case isPromise:
		for _, out := range cc.outgoing {
			r.schedule(p.tx, out)
		}
		forward.forward = append(forward.forward, p)
	default:
		for _, out := range cc.outgoing {
			r.schedule(p.tx, out)
		}
		r.resolve(p, PromiseResult{Value: value})
	}
	r.release(p.tx)
}

func (r *Runtime) invoke(cc *CallContext, method string, args any) (value any, err error) {
	c, ok := r.contract(cc.current)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, cc.current)
	}
	if err = cc.UseGas(BaseReceiptGas); err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s.%s panicked: %v", cc.current, method, rec)
		}
	}()
	return c.Invoke(cc, method, args)
}

// resolve settles p, schedules its continuation and settles every receipt
// that returned p.
func (r *Runtime) resolve(p *Promise, res PromiseResult) {
	if p.resolved {
		logrus.WithFields(logrus.Fields{"promise": p.id, "method": p.method}).Warn("promise resolved twice")
		return
	}
	p.resolved = true
	p.result = res
	if p.next != nil {
		r.schedule(p.tx, p.next)
	}
	for _, f := range p.forward {
		r.resolve(f, res)
	}
	if p == p.tx.root {
		r.mu.Lock()
		p.tx.outcome.Result = res.Value
		if res.Err != nil {
			p.tx.outcome.err = res.Err
			p.tx.outcome.Error = res.Err.Error()
		}
		r.mu.Unlock()
	}
}

func (r *Runtime) schedule(t *transaction, p *Promise) {
	p.tx = t
	r.mu.Lock()
	t.inflight++
	r.mu.Unlock()
	r.enqueue(func(ctx context.Context) { r.execute(ctx, p) })
}

func (r *Runtime) record(t *transaction, receipt ReceiptOutcome) {
	r.mu.Lock()
	t.outcome.Receipts = append(t.outcome.Receipts, receipt)
	r.mu.Unlock()
}

// release marks one receipt of t as done and finalizes t after the last one.
func (r *Runtime) release(t *transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.inflight--
	if t.inflight > 0 {
		return
	}
	finished := r.clock.Now()
	t.outcome.FinishedAt = &finished
	t.outcome.Status = StatusSucceeded
	if t.outcome.err != nil {
		t.outcome.Status = StatusFailed
	}
	if r.history != nil {
		r.history.Put(t.outcome.clone())
	}
	delete(r.pending, t.outcome.ID)
	r.remember(t.outcome.clone())
	close(t.done)
	metrics.RecordTransaction(string(t.outcome.Status))

	entry := logrus.WithFields(logrus.Fields{
		"tx_id":    t.outcome.ID,
		"receiver": t.outcome.Receiver,
		"method":   t.outcome.Method,
		"receipts": len(t.outcome.Receipts),
	})
	if t.outcome.err != nil && !errors.Is(t.outcome.err, context.Canceled) {
		entry.WithError(t.outcome.err).Info("transaction failed")
		return
	}
	entry.Debug("transaction finished")
}

// remember keeps o in the recent window, dropping the oldest entry once the
// window is full. Callers hold r.mu.
func (r *Runtime) remember(o Outcome) {
	if len(r.evictions) >= recentOutcomes {
		delete(r.recent, r.evictions[0])
		r.evictions = r.evictions[1:]
	}
	r.recent[o.ID] = o
	r.evictions = append(r.evictions, o.ID)
}

func (r *Runtime) contract(account AccountID) (Contract, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[account]
	return c, ok
}

func (r *Runtime) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Runtime) enqueue(task func(context.Context)) {
	r.mu.Lock()
	r.queue = append(r.queue, task)
	metrics.SetQueueDepth(len(r.queue))
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runtime) dequeue() func(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil
	}
	task := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	metrics.SetQueueDepth(len(r.queue))
	return task
}

func (r *Runtime) newID() uint64 { return r.ids.Add(1) }

// owns reports whether p descends from a call made during this receipt.
func (cc *CallContext) owns(p *Promise) bool {
	for p.dependency != nil {
		p = p.dependency
	}
	for _, out := range cc.outgoing {
		if out == p {
			return true
		}
	}
	return false
}
