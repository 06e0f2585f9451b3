package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-signup/pkg/contract"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	format := flag.String("format", "json", "output format when emitting: json or yaml")
	output := flag.String("output", "", "output file (stdout if empty)")
	path := flag.String("path", transport.DefaultPath, "registration endpoint path")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [documents...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "\nWithout documents, emit the registration contract. With documents, check\nthat each one accepts and rejects the same payloads as the sign-up form.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := context.Background()

	if flag.NArg() == 0 {
		if err := emit(*format, *path, *output); err != nil {
			fmt.Fprintf(os.Stderr, "emit: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var violations []violation
	for _, file := range flag.Args() {
		checked, err := checkFile(ctx, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check %s: %v\n", file, err)
			os.Exit(1)
		}
		violations = append(violations, checked...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func emit(format, path, output string) error {
	doc, err := contract.Document(validation.SignupSchema(), path)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(format) {
	case "json":
		data, err = contract.MarshalJSON(doc)
	case "yaml", "yml":
		data, err = contract.MarshalYAML(doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

// probe is a payload the form either submits or rejects locally.
type probe struct {
	name   string
	input  model.FormInput
	accept bool
}

func probes() []probe {
	valid := model.FormInput{Username: "ada", Email: "ada@example.com", Password: "correcthorse"}
	tooShort, tooLong, noUser := valid, valid, valid
	tooShort.Password = strings.Repeat("x", validation.PasswordMinLength-1)
	tooLong.Password = strings.Repeat("x", validation.PasswordMaxLength+1)
	noUser.Username = ""
	return []probe{
		{name: "valid payload", input: valid, accept: true},
		{name: "short password", input: tooShort},
		{name: "long password", input: tooLong},
		{name: "empty username", input: noUser},
	}
}

func checkFile(ctx context.Context, file string) ([]violation, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	doc, err := contract.Load(ctx, raw)
	if err != nil {
		return nil, err
	}

	schema, err := contract.RequestSchema(doc)
	if err != nil {
		return []violation{{file: file, location: "paths", message: err.Error()}}, nil
	}

	var result []violation
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	for _, name := range model.FieldNames() {
		location := "requestBody.properties." + name
		if _, ok := schema.Properties[name]; !ok {
			result = append(result, violation{file: file, location: location, message: "property is missing"})
			continue
		}
		if !required[name] {
			result = append(result, violation{file: file, location: location, message: "property is not required"})
		}
	}

	for _, p := range probes() {
		err := contract.CheckBody(ctx, doc, p.input)
		switch {
		case p.accept && err != nil:
			result = append(result, violation{file: file, location: "requestBody", message: fmt.Sprintf("rejects %s: %v", p.name, err)})
		case !p.accept && err == nil:
			result = append(result, violation{file: file, location: "requestBody", message: "accepts " + p.name})
		}
	}
	return result, nil
}
