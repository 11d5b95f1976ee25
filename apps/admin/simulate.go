package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/oinstituto/atlas/core/entry"
)

var (
	mockNames = []string{
		"Ana", "Carlos", "Beatriz", "João", "Fernanda", "Rafael", "Mariana", "Pedro", "Lucas", "Juliana",
		"Roberto", "Camila", "Bruno", "Patricia", "Gabriel", "Larissa", "Felipe", "Vanessa", "Thiago", "Amanda",
		"Rodrigo", "Carolina", "Daniel", "Letícia", "Gustavo", "Sofia", "Eduardo", "Isabela", "Marcelo", "Tatiana",
	}
	mockWords = []string{
		"Mecânica", "Robótica", "IA", "Moda", "Elétrica", "Segurança", "Gestão", "TI", "Logística",
		"Automação", "Edificações", "Química", "Alimentos", "Design", "Mecatrônica",
	}

	randIntn = rand.Intn // mockable
)

func (cli *commandLine) simulateOne(ctx context.Context) (entry.Entry, error) {
	return cli.entries.Create(ctx, entry.NewEntry{
		Name:        mockNames[randIntn(len(mockNames))],
		Expectation: mockWords[randIntn(len(mockWords))],
	})
}

// simulate inserts count mock entries, conf.Simulator.Delay apart.
func (cli *commandLine) simulate(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if i > 0 && cli.conf.Simulator.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cli.conf.Simulator.Delay):
			}
		}
		if _, err := cli.simulateOne(ctx); err != nil {
			return errors.Wrapf(err, "inserting mock entry %d", i+1)
		}
	}
	_, _ = fmt.Fprintf(cli.out, "%d mock entries inserted\n", count)
	return nil
}

// simulateEvery inserts a mock entry on every tick until ctx is done.
// A tick is skipped while the previous insert is still running.
func (cli *commandLine) simulateEvery(ctx context.Context, every time.Duration) error {
	var inserted atomic.Int64
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc("@every "+every.String(), func() {
		e, err := cli.simulateOne(ctx)
		if err != nil {
			cli.logger.Error("simulate: inserting mock entry", err)
			return
		}
		inserted.Add(1)
		cli.logger.Info(fmt.Sprintf("simulate: %s (%s)", e.Name, e.Expectation))
	}); err != nil {
		return errors.Wrap(err, "scheduling mock entries")
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	_, _ = fmt.Fprintf(cli.out, "%d mock entries inserted\n", inserted.Load())
	return nil
}
