package ingestion

import (
	"fmt"

	"github.com/crossbank/refunder/internal/domain"
)

// ParsedPair is one investigation's decoded message pair. Cross-message
// validation (UETR equality and the rest) belongs to the eligibility gate
// chain, not the parser.
type ParsedPair struct {
	Return   *domain.ParsedReturnMessage
	Original *domain.ParsedOriginalMessage
}

// ParsePair decodes a pacs.004 return and its originating pacs.008.
func ParsePair(pacs004XML, pacs008XML []byte) (*ParsedPair, error) {
	ret, err := ParsePacs004(pacs004XML)
	if err != nil {
		return nil, fmt.Errorf("return message: %w", err)
	}
	orig, err := ParsePacs008(pacs008XML)
	if err != nil {
		return nil, fmt.Errorf("original message: %w", err)
	}
	return &ParsedPair{Return: ret, Original: orig}, nil
}
