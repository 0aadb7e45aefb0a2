package button

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

const CodeJournalError = "attempt_journal_error"

func (o *Orchestrator) startSpan(
	ctx context.Context, reg *flow.Registration, p api.Payment,
) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "paybutton.attempt",
		trace.WithAttributes(
			attribute.String(api.MetaPaymentID, string(p.ID)),
			attribute.String(api.MetaPaymentFlow, reg.Name()),
			attribute.String(api.MetaFundingType, string(p.FundingSource)),
			attribute.Bool("is_click", p.IsClick),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (o *Orchestrator) begin(
	reg *flow.Registration, p api.Payment,
) *api.AttemptRecord {
	rec := &api.AttemptRecord{
		StartedAt:       o.now(),
		PaymentID:       p.ID,
		ButtonSessionID: o.props.ButtonSessionID,
		Flow:            reg.Name(),
		FundingSource:   p.FundingSource,
		BuyerIntent:     p.BuyerIntent,
	}
	meta := attemptMetadata(rec)
	o.publish(api.EventTypeAttemptStarted, meta)
	o.publish(api.EventTypeFlowSelected, meta)
	return rec
}

func (o *Orchestrator) finish(
	ctx context.Context, rec *api.AttemptRecord, inst flow.Instance,
	ord *order.Promise, err error,
) {
	rec.FinishedAt = o.now()
	rec.Outcome = flow.OutcomeOf(inst, err)
	rec.Fallback = rec.Outcome == api.OutcomeFallback
	if err != nil {
		rec.Error = err.Error()
	}
	if id, ok := settledOrder(ord); ok {
		rec.OrderID = id
	}

	meta := attemptMetadata(rec)
	if rec.Fallback {
		o.publish(api.EventTypeFallback, meta)
	}
	o.publish(api.EventTypeAttemptFinished, meta)

	if o.journal == nil {
		return
	}
	jctx := context.WithoutCancel(ctx)
	if err := o.journal.Record(jctx, rec); err != nil {
		o.logger.Warn(CodeJournalError, api.Metadata{
			api.MetaPaymentID: rec.PaymentID,
			"err":             err.Error(),
		}).Flush()
	}
}

func (o *Orchestrator) publish(typ api.EventType, meta api.Metadata) {
	if o.publisher != nil {
		o.publisher.Publish(typ, meta)
	}
}

func settledOrder(ord *order.Promise) (api.OrderID, bool) {
	if ord == nil || !ord.IsSettled() {
		return "", false
	}
	id, err := ord.Wait(context.Background())
	return id, err == nil
}

func attemptMetadata(rec *api.AttemptRecord) api.Metadata {
	meta := api.Metadata{
		api.MetaPaymentID:    rec.PaymentID,
		api.MetaPaymentFlow:  rec.Flow,
		api.MetaFundingType:  rec.FundingSource,
		api.MetaButtonSessID: rec.ButtonSessionID,
	}
	if rec.Outcome != "" {
		meta[api.MetaOutcome] = rec.Outcome
	}
	if rec.OrderID != "" {
		meta[api.MetaOrderID] = rec.OrderID
	}
	if rec.Error != "" {
		meta[api.MetaErrorDesc] = rec.Error
	}
	return meta
}
