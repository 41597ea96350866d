// Package context carries per-request metadata through context.Context.
package context

import "context"

// RequestInfo describes the HTTP request, and the replica behind it, that a context serves.
type RequestInfo struct {
	RequestID string
	Method    string
	Route     string
	RemoteIP  string
	// ClientID names the replica that issued the request. Change events carry it so a
	// watcher can recognise its own writes.
	ClientID string
}

// Fields renders the non-empty values for structured logs.
func (i RequestInfo) Fields() map[string]any {
	fields := make(map[string]any, 5)
	for key, value := range map[string]string{
		"request_id": i.RequestID,
		"method":     i.Method,
		"route":      i.Route,
		"remote_ip":  i.RemoteIP,
		"client_id":  i.ClientID,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestInfoFrom returns the info stored in ctx, or the zero value.
func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

func GetRequestID(ctx context.Context) string {
	return RequestInfoFrom(ctx).RequestID
}

func GetClientID(ctx context.Context) string {
	return RequestInfoFrom(ctx).ClientID
}

// SetClientID returns a copy of ctx whose request info names clientID.
func SetClientID(ctx context.Context, clientID string) context.Context {
	info := RequestInfoFrom(ctx)
	info.ClientID = clientID
	return WithRequestInfo(ctx, info)
}
