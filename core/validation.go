// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Type must not be empty
//   - Title must not be empty
//   - ObservedAt must not be empty
//
// NOT validated:
//   - Body and Tags (both optional)
//   - ID (assigned by the vault on creation)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Type == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocType)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.ObservedAt == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyObservedAt)
	}

	return nil
}
