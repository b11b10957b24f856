// README: Seed fixture format and idempotent loader for users and cabs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"cabbook/internal/modules/directory"
)

type fixtureUser struct {
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	PhoneNumber  string `yaml:"phoneNumber"`
	PasswordHash string `yaml:"passwordHash"`
	// Password is hashed with bcrypt when no hash is given.
	Password string `yaml:"password"`
}

func (u fixtureUser) hash() (string, error) {
	if u.PasswordHash != "" || u.Password == "" {
		return u.PasswordHash, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type fixtureCab struct {
	RegistrationNumber string `yaml:"registrationNumber"`
	DriverName         string `yaml:"driverName"`
	DriverPhoneNumber  string `yaml:"driverPhoneNumber"`
	CabType            string `yaml:"cabType"`
	Available          *bool  `yaml:"available"`
}

type Fixture struct {
	Users []fixtureUser `yaml:"users"`
	Cabs  []fixtureCab  `yaml:"cabs"`
}

type Summary struct {
	Users   []directory.User
	Cabs    []directory.Cab
	Skipped int
}

func parseFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, err
	}
	return f, nil
}

func seed(ctx context.Context, dir *directory.Service, f Fixture) (Summary, error) {
	var sum Summary
	for i, u := range f.Users {
		hash, err := u.hash()
		if err != nil {
			return sum, fmt.Errorf("users[%d] %s: %w", i, u.Email, err)
		}
		created, err := dir.Register(ctx, directory.RegisterCommand{
			Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber, PasswordHash: hash,
		})
		if errors.Is(err, directory.ErrDuplicateEmail) {
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("users[%d] %s: %w", i, u.Email, err)
		}
		sum.Users = append(sum.Users, *created)
	}
	for i, c := range f.Cabs {
		created, err := dir.AddCab(ctx, directory.AddCabCommand{
			RegistrationNumber: c.RegistrationNumber,
			DriverName:         c.DriverName,
			DriverPhoneNumber:  c.DriverPhoneNumber,
			CabType:            c.CabType,
			Available:          c.Available,
		})
		if errors.Is(err, directory.ErrDuplicateRegistration) {
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("cabs[%d] %s: %w", i, c.RegistrationNumber, err)
		}
		sum.Cabs = append(sum.Cabs, *created)
	}
	return sum, nil
}
