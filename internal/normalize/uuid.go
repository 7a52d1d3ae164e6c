// SPDX-License-Identifier: Apache-2.0

package normalize

import "github.com/google/uuid"

// IDGenerator produces fresh unique identifiers for records and their
// sub-objects.
type IDGenerator interface {
	Generate() string
}

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
