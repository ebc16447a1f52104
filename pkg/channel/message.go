package channel

import "fmt"

// Message binds a code to an argument type A and a return type R. Declare
// one package-level value per message:
//
//	var AddNumbers = channel.NewMessage[AddArgs, uint32](7, "add_numbers")
type Message[A, R any] struct {
	Code uint32
	Name string
}

func NewMessage[A, R any](code uint32, name string) Message[A, R] {
	return Message[A, R]{Code: code, Name: name}
}

func (m Message[A, R]) String() string {
	return fmt.Sprintf("%s(%d)", m.Name, m.Code)
}
