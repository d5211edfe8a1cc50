// Package stream exposes a broadcast subject over HTTP.
//
// Publish accepts values in POST bodies and hands them to the subject.
// WebSocket and SSE subscribe one receiver per connection and write every
// value the subject broadcasts until either side goes away:
//
//	subj := broadcast.New[Event]()
//	r := mux.NewRouter()
//	r.Handle("/publish", stream.Publish(subj, stream.JSONDecoder[Event]())).Methods(http.MethodPost)
//	r.Handle("/ws", stream.WebSocket(subj, stream.JSONEncoder[Event](), stream.WithAllowAnyOrigin()))
//	r.Handle("/events", stream.SSE(subj, stream.JSONEncoder[Event](), stream.WithEventName("event")))
//
// A subscriber that disconnects closes its receiver; the subject prunes it on
// its next broadcast. When the subject closes, websocket clients receive a
// normal close frame and event streams end.
//
// Idle connections are kept open with websocket pings or ": keepalive" comments
// at the WithKeepAlive interval.
package stream
