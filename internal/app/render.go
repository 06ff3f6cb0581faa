package app

import (
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/order-placement/internal/domain/apperr"
	"github.com/xenking/order-placement/internal/domain/order"
)

// EncodeOrder writes o as a JSON object. Money is rendered as a string with
// two fraction digits.
func EncodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("customer", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(o.CustomerID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(o.Customer.Name) })
				e.Field("email", func(e *jx.Encoder) { e.Str(o.Customer.Email) })
			})
		})
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("price", func(e *jx.Encoder) { e.Str(item.Price.StringFixed(2)) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
						e.Field("subtotal", func(e *jx.Encoder) { e.Str(item.Subtotal().StringFixed(2)) })
					})
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Str(o.Total().StringFixed(2)) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
	})
}

// EncodeError writes err as {"error":{"kind":...,"message":...}}. Errors
// that are not application errors are reported with a generic message.
func EncodeError(e *jx.Encoder, err error) {
	kind := apperr.KindOf(err)
	msg := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("kind", func(e *jx.Encoder) { e.Str(kind.String()) })
				e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
				if appErr != nil && appErr.ProductID != "" {
					e.Field("productId", func(e *jx.Encoder) { e.Str(appErr.ProductID) })
				}
			})
		})
	})
}

// WriteOrder writes o to w as a single JSON line.
func WriteOrder(w io.Writer, o *order.Order) error {
	var e jx.Encoder
	EncodeOrder(&e, o)
	return writeLine(w, &e)
}

// WriteError writes err to w as a single JSON line.
func WriteError(w io.Writer, err error) error {
	var e jx.Encoder
	EncodeError(&e, err)
	return writeLine(w, &e)
}

func writeLine(w io.Writer, e *jx.Encoder) error {
	if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}
