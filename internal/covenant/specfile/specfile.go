// Package specfile reads covenant and vault descriptions from YAML or JSON
// documents.
package specfile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"gopkg.in/yaml.v3"
)

const (
	variantSegwit  = "segwit"
	variantTaproot = "taproot"
)

// Document is the serialized form of a model.TransactionSpec. Nested trees
// that leave network, variant or internal_key empty inherit them from their
// parent. Omitted version and sequences default to 2 and one final input.
type Document struct {
	Network     string           `yaml:"network,omitempty" json:"network,omitempty"`
	Variant     string           `yaml:"variant,omitempty" json:"variant,omitempty"`
	InternalKey string           `yaml:"internal_key,omitempty" json:"internal_key,omitempty"`
	Version     *int32           `yaml:"version,omitempty" json:"version,omitempty"`
	LockTime    uint32           `yaml:"locktime,omitempty" json:"locktime,omitempty"`
	Sequences   []uint32         `yaml:"sequences,omitempty" json:"sequences,omitempty"`
	InputIndex  uint32           `yaml:"input_index,omitempty" json:"input_index,omitempty"`
	Outputs     []OutputDocument `yaml:"outputs" json:"outputs"`
}

// OutputDocument sets exactly one of Address, Data (hex) or Tree. An explicit
// empty Data is a data output with no payload.
type OutputDocument struct {
	Address string    `yaml:"address,omitempty" json:"address,omitempty"`
	Data    *string   `yaml:"data,omitempty" json:"data,omitempty"`
	Tree    *Document `yaml:"tree,omitempty" json:"tree,omitempty"`
	Value   uint64    `yaml:"value,omitempty" json:"value,omitempty"`
}

// VaultDocument is the serialized form of a model.VaultSpec.
type VaultDocument struct {
	Network string `yaml:"network" json:"network"`
	Hot     string `yaml:"hot" json:"hot"`
	Cold    string `yaml:"cold" json:"cold"`
	Amount  uint64 `yaml:"amount" json:"amount"`
	Delay   uint32 `yaml:"delay" json:"delay"`
	Taproot bool   `yaml:"taproot,omitempty" json:"taproot,omitempty"`
}

// Parse decodes a covenant document.
func Parse(data []byte) (*model.TransactionSpec, error) {
	var doc Document
	if err := decode(data, &doc); err != nil {
		return nil, err
	}
	return doc.Spec()
}

// ParseVault decodes a vault document.
func ParseVault(data []byte) (model.VaultSpec, error) {
	var doc VaultDocument
	if err := decode(data, &doc); err != nil {
		return model.VaultSpec{}, err
	}
	return doc.Spec(), nil
}

// Load reads and parses a covenant document from path; "-" reads stdin.
func Load(path string) (*model.TransactionSpec, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadVault reads and parses a vault document from path; "-" reads stdin.
func LoadVault(path string) (model.VaultSpec, error) {
	data, err := read(path)
	if err != nil {
		return model.VaultSpec{}, err
	}
	return ParseVault(data)
}

func read(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return data, nil
}

func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Errorf(model.KindInvalidSpec, "decode document", "empty document")
		}
		return model.NewError(model.KindInvalidSpec, "decode document", err)
	}
	return nil
}

// Spec converts d into a model.TransactionSpec.
func (d *Document) Spec() (*model.TransactionSpec, error) {
	return d.spec(nil)
}

func (d *Document) spec(parent *Document) (*model.TransactionSpec, error) {
	doc := *d
	if parent != nil {
		if doc.Network == "" {
			doc.Network = parent.Network
		}
		if doc.Variant == "" {
			doc.Variant = parent.Variant
			if doc.InternalKey == "" {
				doc.InternalKey = parent.InternalKey
			}
		}
	}

	variant, err := doc.variant()
	if err != nil {
		return nil, err
	}

	fields := model.DefaultFields()
	if doc.Version != nil {
		fields.Version = *doc.Version
	}
	fields.LockTime = doc.LockTime
	if len(doc.Sequences) > 0 {
		fields.Sequences = doc.Sequences
	}
	fields.InputIndex = doc.InputIndex

	fields.Outputs = make([]model.Output, 0, len(doc.Outputs))
	for i, o := range doc.Outputs {
		output, err := o.output(&doc)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		fields.Outputs = append(fields.Outputs, output)
	}

	return &model.TransactionSpec{
		Network: model.Network(doc.Network),
		Variant: variant,
		Fields:  fields,
	}, nil
}

func (d *Document) variant() (model.ScriptVariant, error) {
	switch strings.ToLower(d.Variant) {
	case "", variantSegwit, "p2wsh":
		if d.InternalKey != "" {
			return model.ScriptVariant{}, model.Errorf(model.KindInvalidSpec, "variant", "internal_key requires the taproot variant")
		}
		return model.SegwitVariant(), nil
	case variantTaproot, "p2tr":
		if d.InternalKey == "" {
			return model.TaprootVariant(nil), nil
		}
		key, err := ParseInternalKey(d.InternalKey)
		if err != nil {
			return model.ScriptVariant{}, err
		}
		return model.TaprootVariant(key), nil
	default:
		return model.ScriptVariant{}, model.Errorf(model.KindInvalidSpec, "variant", "unknown variant %q", d.Variant)
	}
}

// ParseInternalKey accepts a 32-byte x-only or a 33-byte compressed key in hex.
func ParseInternalKey(value string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, model.NewError(model.KindInvalidSpec, "internal key", err)
	}
	var key *btcec.PublicKey
	switch len(raw) {
	case schnorr.PubKeyBytesLen:
		key, err = schnorr.ParsePubKey(raw)
	case btcec.PubKeyBytesLenCompressed:
		key, err = btcec.ParsePubKey(raw)
	default:
		return nil, model.Errorf(model.KindInvalidSpec, "internal key", "unexpected key length %d", len(raw))
	}
	if err != nil {
		return nil, model.NewError(model.KindInvalidSpec, "internal key", err)
	}
	return key, nil
}

func (o OutputDocument) output(parent *Document) (model.Output, error) {
	set := 0
	for _, present := range []bool{o.Address != "", o.Data != nil, o.Tree != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, model.Errorf(model.KindInvalidSpec, "output", "exactly one of address, data or tree must be set")
	}

	switch {
	case o.Address != "":
		return model.AddressOutput{Address: o.Address, Value: o.Value}, nil
	case o.Data != nil:
		if o.Value != 0 {
			return nil, model.Errorf(model.KindInvalidSpec, "output", "data outputs carry no value")
		}
		payload, err := hex.DecodeString(*o.Data)
		if err != nil {
			return nil, model.NewError(model.KindInvalidSpec, "data output", err)
		}
		return model.DataOutput{Payload: payload}, nil
	default:
		child, err := o.Tree.spec(parent)
		if err != nil {
			return nil, err
		}
		return model.NewTreeOutput(*child, o.Value), nil
	}
}

// Spec converts d into a model.VaultSpec.
func (d VaultDocument) Spec() model.VaultSpec {
	return model.VaultSpec{
		HotAddress:  d.Hot,
		ColdAddress: d.Cold,
		Amount:      d.Amount,
		Network:     model.Network(d.Network),
		Delay:       d.Delay,
		Taproot:     d.Taproot,
	}
}
