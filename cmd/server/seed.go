package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/taskdesk/internal/service"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of a seed file:
//
//	users:
//	  - email: ada@example.com
//	    name: Ada Admin
//	    role: ADMIN
//	    password: change-me-now
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

func readSeedFile(path string) ([]service.NewUserInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	inputs, err := parseSeed(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inputs, nil
}

// parseSeed decodes a seed document. Unknown keys are rejected so that a
// misspelled field does not silently create a user without it.
func parseSeed(raw []byte) ([]service.NewUserInput, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	if len(f.Users) == 0 {
		return nil, errors.New("seed file lists no users")
	}

	inputs := make([]service.NewUserInput, 0, len(f.Users))
	for _, u := range f.Users {
		role := u.Role
		if role == "" {
			role = "TEAM_MEMBER"
		}
		inputs = append(inputs, service.NewUserInput{
			Email:    u.Email,
			Name:     u.Name,
			Role:     role,
			Password: u.Password,
		})
	}
	return inputs, nil
}
