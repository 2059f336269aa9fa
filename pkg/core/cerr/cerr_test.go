// Copyright (c) 2026 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/momeni/scratchdb/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
)

func TestNotSupportedWrapsSentinel(t *testing.T) {
	err := cerr.NotSupported("reverting the baseline")
	assert.ErrorIs(t, err, cerr.ErrNotSupported)
	assert.Equal(t, "reverting the baseline: not supported", err.Error())
}

func TestArgumentErrorIsMatchedThroughWrapping(t *testing.T) {
	err := fmt.Errorf("creating runner: %w", cerr.Argument("connString"))
	assert.True(t, cerr.IsArgument(err))
	var ae *cerr.ArgumentError
	if assert.True(t, errors.As(err, &ae)) {
		assert.Equal(t, "connString", ae.Name)
	}
	assert.False(t, cerr.IsArgument(errors.New("other")))
	assert.Equal(
		t, `invalid argument "path": no base name`,
		(&cerr.ArgumentError{Name: "path", Reason: "no base name"}).Error(),
	)
}
