package dialog

// Event is one inbound message, already decoded from the channel payload.
// The three kinds mirror what the channel can deliver: plain text, a
// button-reply and a list-reply.
type Event interface {
	isEvent()
}

// FreeText is an ordinary text message.
type FreeText struct {
	Text string
}

// ButtonReply is a tap on a reply button of a previously sent button set.
type ButtonReply struct {
	ID    string
	Title string
}

// ListReply is a row picked from a previously sent list widget.
type ListReply struct {
	ID    string
	Title string
}

func (FreeText) isEvent()    {}
func (ButtonReply) isEvent() {}
func (ListReply) isEvent()   {}
