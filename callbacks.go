package vidgfx

// CallbackID identifies a registered callback for removal.
type CallbackID uint64

// ContextFunc is notified when a context is initialized or about to be
// destroyed.
type ContextFunc func(ctx *Context)

// CapabilityFunc is notified when a device capability becomes known.
type CapabilityFunc func(ctx *Context, supported bool)

type entry[F any] struct {
	id CallbackID
	fn F
}

// callbackLists are the observer lists of one Context. Callbacks run
// synchronously on the rendering goroutine in registration order.
type callbackLists struct {
	next             CallbackID
	initialized      []entry[ContextFunc]
	destroying       []entry[ContextFunc]
	sharedTexChanged []entry[CapabilityFunc]
	bgraChanged      []entry[CapabilityFunc]
}

func add[F any](l *callbackLists, list *[]entry[F], fn F) CallbackID {
	l.next++
	*list = append(*list, entry[F]{id: l.next, fn: fn})
	return l.next
}

func remove[F any](list *[]entry[F], id CallbackID) bool {
	for i, e := range *list {
		if e.id == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// fire calls every callback of a snapshot of list, so callbacks may add or
// remove callbacks.
func (l *callbackLists) fire(c *Context, list []entry[ContextFunc]) {
	for _, e := range append([]entry[ContextFunc](nil), list...) {
		e.fn(c)
	}
}

func (l *callbackLists) fireBool(c *Context, list []entry[CapabilityFunc], v bool) {
	for _, e := range append([]entry[CapabilityFunc](nil), list...) {
		e.fn(c, v)
	}
}

// AddInitializedCallback registers fn to run at the end of Init.
func (c *Context) AddInitializedCallback(fn ContextFunc) CallbackID {
	return add(&c.callbacks, &c.callbacks.initialized, fn)
}

// RemoveInitializedCallback unregisters a callback added with
// AddInitializedCallback.
func (c *Context) RemoveInitializedCallback(id CallbackID) bool {
	return remove(&c.callbacks.initialized, id)
}

// AddDestroyingCallback registers fn to run at the start of Destroy, while
// every resource is still alive.
func (c *Context) AddDestroyingCallback(fn ContextFunc) CallbackID {
	return add(&c.callbacks, &c.callbacks.destroying, fn)
}

// RemoveDestroyingCallback unregisters a callback added with
// AddDestroyingCallback.
func (c *Context) RemoveDestroyingCallback(id CallbackID) bool {
	return remove(&c.callbacks.destroying, id)
}

// AddSharedTexSupportChangedCallback registers fn to learn whether the
// device supports shared textures.
func (c *Context) AddSharedTexSupportChangedCallback(fn CapabilityFunc) CallbackID {
	return add(&c.callbacks, &c.callbacks.sharedTexChanged, fn)
}

// RemoveSharedTexSupportChangedCallback unregisters a callback added with
// AddSharedTexSupportChangedCallback.
func (c *Context) RemoveSharedTexSupportChangedCallback(id CallbackID) bool {
	return remove(&c.callbacks.sharedTexChanged, id)
}

// AddBGRASupportChangedCallback registers fn to learn whether the device
// supports BGRA textures.
func (c *Context) AddBGRASupportChangedCallback(fn CapabilityFunc) CallbackID {
	return add(&c.callbacks, &c.callbacks.bgraChanged, fn)
}

// RemoveBGRASupportChangedCallback unregisters a callback added with
// AddBGRASupportChangedCallback.
func (c *Context) RemoveBGRASupportChangedCallback(id CallbackID) bool {
	return remove(&c.callbacks.bgraChanged, id)
}
