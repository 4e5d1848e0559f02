package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/security"
)

// Seed is the directory data an in-memory store starts with. Accounts are
// listed with plain passwords and hashed on load.
type Seed struct {
	Airports []struct {
		Code    string `yaml:"code"`
		Name    string `yaml:"name"`
		City    string `yaml:"city"`
		Country string `yaml:"country"`
	} `yaml:"airports"`
	Owners []struct {
		CompanyName string `yaml:"company_name"`
		CompanyCode string `yaml:"company_code"`
		ContactInfo string `yaml:"contact_info"`
		Password    string `yaml:"password"`
	} `yaml:"owners"`
	Admins []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admins"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

func (s *Store) Apply(seed *Seed) error {
	for _, a := range seed.Airports {
		s.AddAirport(domain.Airport{Code: a.Code, Name: a.Name, City: a.City, Country: a.Country})
	}
	for _, o := range seed.Owners {
		hash, err := security.HashPassword(o.Password)
		if err != nil {
			return fmt.Errorf("owner %s: %w", o.CompanyCode, err)
		}
		s.AddOwner(domain.FlightOwner{
			CompanyName:  o.CompanyName,
			CompanyCode:  o.CompanyCode,
			ContactInfo:  o.ContactInfo,
			PasswordHash: hash,
		})
	}
	for _, a := range seed.Admins {
		hash, err := security.HashPassword(a.Password)
		if err != nil {
			return fmt.Errorf("admin %s: %w", a.Username, err)
		}
		s.AddAdmin(domain.Admin{Username: a.Username, PasswordHash: hash})
	}
	return nil
}
