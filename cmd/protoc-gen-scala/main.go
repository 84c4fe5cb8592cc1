// The protoc-gen-scala binary is a protoc plugin that generates Scala
// source from a protocol buffer schema.
package main

import (
	"github.com/aranyx/protoc-gen-scala/internal/gen"
	"github.com/aranyx/protoc-gen-scala/protogen"
)

func main() {
	opts := &protogen.Options{}
	protogen.Run(opts, func(p *protogen.Plugin) error {
		driverOpts := gen.OptionsFromPlugin(opts, nil)
		for _, f := range p.Files {
			if err := gen.GenerateFile(p, driverOpts, f); err != nil {
				return err
			}
		}
		return nil
	})
}
