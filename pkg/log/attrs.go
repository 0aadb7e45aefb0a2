package log

import "log/slog"

func PaymentID[T ~string](id T) slog.Attr {
	return slog.String("payment_id", string(id))
}

func OrderID[T ~string](id T) slog.Attr {
	return slog.String("order_id", string(id))
}

func ClientID[T ~string](id T) slog.Attr {
	return slog.String("client_id", string(id))
}

func FundingSource[T ~string](fs T) slog.Attr {
	return slog.String("funding_source", string(fs))
}

func BuyerIntent[T ~string](intent T) slog.Attr {
	return slog.String("buyer_intent", string(intent))
}

func Flow(name string) slog.Attr {
	return slog.String("payment_flow", name)
}

func Code(code string) slog.Attr {
	return slog.String("code", code)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
