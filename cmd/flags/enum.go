package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// EnumValue is a string flag value restricted to a fixed set.
type EnumValue struct {
	Name        string
	Usage       string
	Destination *string
	Enum        []string
	Value       string
}

// Set rejects values outside of the enum.
func (e *EnumValue) Set(value string) error {
	for _, v := range e.Enum {
		if v == value {
			*e.Destination = value
			return nil
		}
	}
	return fmt.Errorf("allowed values are %s", strings.Join(e.Enum, ", "))
}

func (e *EnumValue) String() string {
	if e.Destination == nil || *e.Destination == "" {
		return e.Value
	}
	return *e.Destination
}

// GenericFlag wraps the EnumValue in a GenericFlag value so that it satisfies the cli.Flag interface.
func (e EnumValue) GenericFlag() *cli.GenericFlag {
	*e.Destination = e.Value
	var i cli.Generic = &e
	return &cli.GenericFlag{
		Name:        e.Name,
		Usage:       fmt.Sprintf("%s (%s)", e.Usage, strings.Join(e.Enum, ", ")),
		Destination: i,
		Value:       i,
	}
}
