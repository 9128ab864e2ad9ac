package adapters

import (
	"context"
	"errors"
	"testing"

	"homefin/internal/amqp"
	"homefin/internal/core"
	"homefin/internal/memory"
	"homefin/internal/ports"
	"homefin/internal/services"
)

type recordingPublisher struct {
	kinds []core.Kind
	ops   []amqp.Op
}

func (p *recordingPublisher) PublishRecordSync(_ context.Context, op amqp.Op, kind core.Kind, _, _ int) error {
	p.ops = append(p.ops, op)
	p.kinds = append(p.kinds, kind)
	return nil
}

func TestStoreAdapter_WritesGoThroughService(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pub := &recordingPublisher{}
	a := NewStoreAdapter(store, services.NewRecordService(store, pub))

	p := core.NewPeriod(2024, 4)
	if err := a.SaveIncomeRecord(ctx, core.IncomeExpenseRecord{Period: p}); err != nil {
		t.Fatalf("SaveIncomeRecord: %v", err)
	}
	if _, ok, _ := a.FindIncomeRecord(ctx, p); !ok {
		t.Error("record should be readable through the adapter")
	}
	if err := a.SaveTaxReturn(ctx, core.TaxReturnSummary{Year: 2023}); err != nil {
		t.Fatalf("SaveTaxReturn: %v", err)
	}
	if err := a.DeleteIncomeRecord(ctx, p); err != nil {
		t.Fatalf("DeleteIncomeRecord: %v", err)
	}

	if len(pub.kinds) != 3 || pub.kinds[1] != core.KindTax || pub.ops[2] != amqp.OpDelete {
		t.Errorf("published %v %v", pub.ops, pub.kinds)
	}
}

func TestStoreAdapter_ErrorsPropagate(t *testing.T) {
	store := memory.New()
	a := NewStoreAdapter(store, services.NewRecordService(store, nil))

	err := a.DeleteBalanceSnapshot(context.Background(), core.NewPeriod(2020, 1))
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStoreAdapter_PingWithoutPinger(t *testing.T) {
	store := memory.New()
	a := NewStoreAdapter(store, services.NewRecordService(store, nil))
	if err := a.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}
