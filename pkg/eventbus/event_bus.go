// Package eventbus dispatches events to handlers by argument type.
package eventbus

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	Clear()
	SubscribersCount() int
}

// subscription caches the handler's parameter types so Publish does not
// re-inspect the func on every event.
type subscription struct {
	fn     reflect.Value
	params []reflect.Type
}

func (s subscription) accepts(args []interface{}) bool {
	if len(s.params) != len(args) {
		return false
	}
	for i, arg := range args {
		if !assignable(arg, s.params[i]) {
			return false
		}
	}
	return true
}

type publisher struct {
	log logrus.FieldLogger

	mu   sync.RWMutex
	subs []subscription
}

func NewEventPublisher(log logrus.FieldLogger) EventBus {
	return &publisher{log: log}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func {
		return false
	}
	return subscription{params: paramTypes(t)}.accepts(args)
}

func paramTypes(t reflect.Type) []reflect.Type {
	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	return params
}

func assignable(arg interface{}, param reflect.Type) bool {
	if arg == nil {
		switch param.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(arg).AssignableTo(param)
}

func (p *publisher) Publish(args ...interface{}) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	p.mu.RLock()
	subs := append([]subscription(nil), p.subs...)
	p.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if !s.accepts(args) {
			continue
		}
		call := in
		for i := range call {
			if !call[i].IsValid() {
				call = append([]reflect.Value(nil), in...)
				call[i] = reflect.Zero(s.params[i])
			}
		}
		if p.invoke(s, call, args) {
			delivered++
		}
	}

	if delivered == 0 && p.log != nil {
		p.log.Debugf("eventbus: no matching subscribers for %v", args)
	}
}

func (p *publisher) invoke(s subscription, in []reflect.Value, args []interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if p.log != nil {
				p.log.WithField("handler", s.fn.Type().String()).
					Errorf("eventbus: handler panicked with args %v: %v", args, r)
			}
		}
	}()
	s.fn.Call(in)
	return true
}

func (p *publisher) Subscribe(handler interface{}) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	p.mu.Lock()
	p.subs = append(p.subs, subscription{fn: v, params: paramTypes(v.Type())})
	p.mu.Unlock()
}

// Unsubscribe removes the first subscription of handler. Funcs are not
// comparable, so identity is the code pointer of the func value.
func (p *publisher) Unsubscribe(handler interface{}) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s.fn.Pointer() == v.Pointer() && s.fn.Type() == v.Type() {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

func (p *publisher) Clear() {
	p.mu.Lock()
	p.subs = nil
	p.mu.Unlock()
}

func (p *publisher) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
