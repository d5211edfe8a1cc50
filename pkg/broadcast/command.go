package broadcast

// command is the closed set of messages consumed by the actor loop.
type command interface {
	isCommand()
}

type sendCmd[V any] struct {
	value V
}

type subscribeCmd[V any] struct {
	sink Queue[V]
}

type disconnectCmd struct{}

func (sendCmd[V]) isCommand()      {}
func (subscribeCmd[V]) isCommand() {}
func (disconnectCmd) isCommand()   {}
