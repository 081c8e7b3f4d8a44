// Copyright 2026 Blink Labs Software
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

package substrate

import (
	"github.com/blinklabs-io/gosubstrate/scale"
	"github.com/blinklabs-io/gosubstrate/tracker"
)

// dispatchError finds a System.ExtrinsicFailed event and names its error
func (s *Session) dispatchError(events []tracker.Event) (*tracker.ErrorDetail, bool) {
	for _, ev := range events {
		if ev.Pallet != systemPallet || ev.Name != "ExtrinsicFailed" {
			continue
		}
		return s.describeDispatchError(ev.Fields.At(0)), true
	}
	return nil, false
}

// describeDispatchError resolves module errors through the metadata. Other
// errors are named by their variant, with a nested variant appended as in
// Token.FundsUnavailable.
func (s *Session) describeDispatchError(dispatchErr *scale.Value) *tracker.ErrorDetail {
	detail := &tracker.ErrorDetail{
		Name:  dispatchErr.VariantName(),
		Value: dispatchErr,
	}
	if detail.Name == "" {
		detail.Name = "Unknown"
		return detail
	}
	inner := dispatchErr.Payload().At(0)
	if detail.Name == "Module" {
		palletIndex, errorIndex, ok := moduleErrorIndexes(inner)
		if !ok {
			return detail
		}
		pallet, variant, err := s.view().md.ModuleError(palletIndex, errorIndex)
		if err != nil {
			s.logger.Warn(
				"unable to resolve module error",
				"error",
				err,
			)
			return detail
		}
		detail.Pallet = pallet.Name
		detail.Name = variant.Name
		detail.Docs = variant.Docs
		return detail
	}
	if name := inner.VariantName(); name != "" {
		detail.Name += "." + name
	}
	return detail
}

// moduleErrorIndexes reads a module error's pallet index and error
// discriminant. Newer runtimes carry the error as a 4-byte array whose first
// byte is the discriminant.
func moduleErrorIndexes(moduleErr *scale.Value) (uint8, uint8, bool) {
	index, ok := moduleErr.Field("index")
	if !ok {
		return 0, 0, false
	}
	palletIndex, ok := index.AsUint64()
	if !ok || palletIndex > 0xff {
		return 0, 0, false
	}
	errField, ok := moduleErr.Field("error")
	if !ok {
		return 0, 0, false
	}
	if data, ok := errField.AsBytes(); ok {
		if len(data) == 0 {
			return 0, 0, false
		}
		return uint8(palletIndex), data[0], true
	}
	errorIndex, ok := errField.AsUint64()
	if !ok || errorIndex > 0xff {
		return 0, 0, false
	}
	return uint8(palletIndex), uint8(errorIndex), true
}
