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

package test

import (
	"github.com/blinklabs-io/gosubstrate/hashing"
	"github.com/blinklabs-io/gosubstrate/metadata"
)

// Type IDs used by the fixture metadata
const (
	TypeU8 metadata.TypeID = iota
	TypeBytes32
	TypeAccountID
	TypeU128
	TypeU32
	TypeUnit
	TypeMultiAddress
	TypeCompactU32
	TypeVecU8
	TypeBytes20
	TypeBool
	TypeCollectionsCall
	TypeOptionAccountID
	TypeItemDetails
	TypeU128Pair
	TypeUniquesCall
	TypeStr
	TypePhase
	TypeH256
	TypeVecH256
	TypeRuntimeEvent
	TypeSystemEvent
	TypeDispatchInfo
	TypeDispatchError
	TypeModuleError
	TypeBytes4
	TypeTokenError
	TypeUniquesEvent
	TypeEventRecord
	TypeVecEventRecord
	TypeU64
	TypeUniquesError
	TypeCompactU128
	TypeI32
	TypeVecU32
	TypeSystemCall
)

// Pallet indexes used by the fixture metadata
const (
	PalletIndexSystem      uint8 = 0
	PalletIndexCollections uint8 = 7
	PalletIndexUniques     uint8 = 40
)

const FixtureSpecVersion uint32 = 1_002_000

func typeRef(id metadata.TypeID) *metadata.TypeID {
	return &id
}

func named(name string, id metadata.TypeID) metadata.Field {
	return metadata.Field{Name: name, Type: id}
}

func unnamed(id metadata.TypeID) metadata.Field {
	return metadata.Field{Type: id}
}

// FixtureTypes returns the portable type table of the fixture metadata
func FixtureTypes() []metadata.Type {
	return []metadata.Type{
		{ID: TypeU8, Def: metadata.PrimitiveOf(metadata.PrimitiveU8)},
		{ID: TypeBytes32, Def: metadata.ArrayOf(32, TypeU8)},
		{
			ID:   TypeAccountID,
			Path: []string{"sp_core", "crypto", "AccountId32"},
			Def:  metadata.Composite(unnamed(TypeBytes32)),
		},
		{ID: TypeU128, Def: metadata.PrimitiveOf(metadata.PrimitiveU128)},
		{ID: TypeU32, Def: metadata.PrimitiveOf(metadata.PrimitiveU32)},
		{ID: TypeUnit, Def: metadata.TupleOf()},
		{
			ID:   TypeMultiAddress,
			Path: []string{"sp_runtime", "multiaddress", "MultiAddress"},
			Def: metadata.Enum(
				metadata.Variant{Name: "Id", Index: 0, Fields: []metadata.Field{unnamed(TypeAccountID)}},
				metadata.Variant{Name: "Index", Index: 1, Fields: []metadata.Field{unnamed(TypeCompactU32)}},
				metadata.Variant{Name: "Raw", Index: 2, Fields: []metadata.Field{unnamed(TypeVecU8)}},
				metadata.Variant{Name: "Address32", Index: 3, Fields: []metadata.Field{unnamed(TypeBytes32)}},
				metadata.Variant{Name: "Address20", Index: 4, Fields: []metadata.Field{unnamed(TypeBytes20)}},
			),
		},
		{ID: TypeCompactU32, Def: metadata.CompactOf(TypeU32)},
		{ID: TypeVecU8, Def: metadata.SequenceOf(TypeU8)},
		{ID: TypeBytes20, Def: metadata.ArrayOf(20, TypeU8)},
		{ID: TypeBool, Def: metadata.PrimitiveOf(metadata.PrimitiveBool)},
		{
			ID:   TypeCollectionsCall,
			Path: []string{"pallet_collections", "pallet", "Call"},
			Def: metadata.Enum(
				metadata.Variant{
					Name:   "create",
					Index:  0,
					Fields: []metadata.Field{named("id", TypeU128), named("owner", TypeAccountID)},
				},
				metadata.Variant{
					Name:   "set_name",
					Index:  1,
					Fields: []metadata.Field{named("id", TypeCompactU128), named("name", TypeStr)},
				},
				metadata.Variant{
					Name:   "set_limits",
					Index:  2,
					Fields: []metadata.Field{named("limits", TypeVecU32), named("delta", TypeI32)},
				},
				metadata.Variant{
					Name:   "freeze",
					Index:  3,
					Fields: []metadata.Field{named("id", TypeU128), named("frozen", TypeBool)},
				},
			),
		},
		{
			ID:   TypeOptionAccountID,
			Path: []string{"Option"},
			Def: metadata.Enum(
				metadata.Variant{Name: "None", Index: 0},
				metadata.Variant{Name: "Some", Index: 1, Fields: []metadata.Field{unnamed(TypeAccountID)}},
			),
		},
		{
			ID:   TypeItemDetails,
			Path: []string{"pallet_uniques", "types", "ItemDetails"},
			Def: metadata.Composite(
				named("owner", TypeAccountID),
				named("approved", TypeOptionAccountID),
				named("is_frozen", TypeBool),
				named("deposit", TypeU128),
			),
		},
		{ID: TypeU128Pair, Def: metadata.TupleOf(TypeU128, TypeU128)},
		{
			ID:   TypeUniquesCall,
			Path: []string{"pallet_uniques", "pallet", "Call"},
			Def: metadata.Enum(
				metadata.Variant{
					Name:   "create",
					Index:  0,
					Fields: []metadata.Field{named("collection", TypeU128), named("admin", TypeMultiAddress)},
				},
				metadata.Variant{
					Name:  "mint",
					Index: 3,
					Fields: []metadata.Field{
						named("collection", TypeU128),
						named("item", TypeU128),
						named("owner", TypeMultiAddress),
					},
				},
			),
		},
		{ID: TypeStr, Def: metadata.PrimitiveOf(metadata.PrimitiveStr)},
		{
			ID:   TypePhase,
			Path: []string{"frame_system", "Phase"},
			Def: metadata.Enum(
				metadata.Variant{Name: "ApplyExtrinsic", Index: 0, Fields: []metadata.Field{unnamed(TypeU32)}},
				metadata.Variant{Name: "Finalization", Index: 1},
				metadata.Variant{Name: "Initialization", Index: 2},
			),
		},
		{
			ID:   TypeH256,
			Path: []string{"primitive_types", "H256"},
			Def:  metadata.Composite(unnamed(TypeBytes32)),
		},
		{ID: TypeVecH256, Def: metadata.SequenceOf(TypeH256)},
		{
			ID:   TypeRuntimeEvent,
			Path: []string{"runtime", "RuntimeEvent"},
			Def: metadata.Enum(
				metadata.Variant{Name: "System", Index: PalletIndexSystem, Fields: []metadata.Field{unnamed(TypeSystemEvent)}},
				metadata.Variant{Name: "Uniques", Index: PalletIndexUniques, Fields: []metadata.Field{unnamed(TypeUniquesEvent)}},
			),
		},
		{
			ID:   TypeSystemEvent,
			Path: []string{"frame_system", "pallet", "Event"},
			Def: metadata.Enum(
				metadata.Variant{
					Name:   "ExtrinsicSuccess",
					Index:  0,
					Fields: []metadata.Field{named("dispatch_info", TypeDispatchInfo)},
				},
				metadata.Variant{
					Name:  "ExtrinsicFailed",
					Index: 1,
					Fields: []metadata.Field{
						named("dispatch_error", TypeDispatchError),
						named("dispatch_info", TypeDispatchInfo),
					},
				},
			),
		},
		{
			ID:   TypeDispatchInfo,
			Path: []string{"frame_support", "dispatch", "DispatchInfo"},
			Def:  metadata.Composite(named("weight", TypeU64), named("pays_fee", TypeBool)),
		},
		{
			ID:   TypeDispatchError,
			Path: []string{"sp_runtime", "DispatchError"},
			Def: metadata.Enum(
				metadata.Variant{Name: "Other", Index: 0},
				metadata.Variant{Name: "CannotLookup", Index: 1},
				metadata.Variant{Name: "BadOrigin", Index: 2},
				metadata.Variant{Name: "Module", Index: 3, Fields: []metadata.Field{unnamed(TypeModuleError)}},
				metadata.Variant{Name: "Token", Index: 7, Fields: []metadata.Field{unnamed(TypeTokenError)}},
			),
		},
		{
			ID:   TypeModuleError,
			Path: []string{"sp_runtime", "ModuleError"},
			Def:  metadata.Composite(named("index", TypeU8), named("error", TypeBytes4)),
		},
		{ID: TypeBytes4, Def: metadata.ArrayOf(4, TypeU8)},
		{
			ID:   TypeTokenError,
			Path: []string{"sp_runtime", "TokenError"},
			Def: metadata.Enum(
				metadata.Variant{Name: "FundsUnavailable", Index: 0},
				metadata.Variant{Name: "OnlyProvider", Index: 1},
				metadata.Variant{Name: "BelowMinimum", Index: 2},
			),
		},
		{
			ID:   TypeUniquesEvent,
			Path: []string{"pallet_uniques", "pallet", "Event"},
			Def: metadata.Enum(
				metadata.Variant{
					Name:  "Created",
					Index: 0,
					Fields: []metadata.Field{
						named("collection", TypeU128),
						named("creator", TypeAccountID),
						named("owner", TypeAccountID),
					},
				},
				metadata.Variant{
					Name:  "Issued",
					Index: 2,
					Fields: []metadata.Field{
						named("collection", TypeU128),
						named("item", TypeU128),
						named("owner", TypeAccountID),
					},
				},
			),
		},
		{
			ID:   TypeEventRecord,
			Path: []string{"frame_system", "EventRecord"},
			Def: metadata.Composite(
				named("phase", TypePhase),
				named("event", TypeRuntimeEvent),
				named("topics", TypeVecH256),
			),
		},
		{ID: TypeVecEventRecord, Def: metadata.SequenceOf(TypeEventRecord)},
		{ID: TypeU64, Def: metadata.PrimitiveOf(metadata.PrimitiveU64)},
		{
			ID:   TypeUniquesError,
			Path: []string{"pallet_uniques", "pallet", "Error"},
			Def: metadata.Enum(
				metadata.Variant{
					Name:  "NoPermission",
					Index: 0,
					Docs:  []string{"The signing account has no permission to do the operation."},
				},
				metadata.Variant{
					Name:  "UnknownCollection",
					Index: 1,
					Docs:  []string{"The given item ID is unknown."},
				},
				metadata.Variant{
					Name:  "AlreadyExists",
					Index: 2,
					Docs:  []string{"The item ID has already been used for an item."},
				},
			),
		},
		{ID: TypeCompactU128, Def: metadata.CompactOf(TypeU128)},
		{ID: TypeI32, Def: metadata.PrimitiveOf(metadata.PrimitiveI32)},
		{ID: TypeVecU32, Def: metadata.SequenceOf(TypeU32)},
		{
			ID:   TypeSystemCall,
			Path: []string{"frame_system", "pallet", "Call"},
			Def: metadata.Enum(
				metadata.Variant{Name: "remark", Index: 0, Fields: []metadata.Field{named("remark", TypeVecU8)}},
			),
		},
	}
}

// FixturePallets returns the pallets of the fixture metadata
func FixturePallets() []metadata.Pallet {
	return []metadata.Pallet{
		{
			Name:   "System",
			Index:  PalletIndexSystem,
			Calls:  typeRef(TypeSystemCall),
			Events: typeRef(TypeSystemEvent),
			Storage: &metadata.PalletStorage{
				Prefix: "System",
				Entries: []metadata.StorageEntry{
					{
						Name:     "Events",
						Modifier: metadata.StorageDefault,
						Value:    TypeVecEventRecord,
						Default:  []byte{0x00},
					},
					{
						Name:     "Number",
						Modifier: metadata.StorageDefault,
						Value:    TypeU32,
						Default:  []byte{0x00, 0x00, 0x00, 0x00},
					},
				},
			},
		},
		{
			Name:  "Collections",
			Index: PalletIndexCollections,
			Calls: typeRef(TypeCollectionsCall),
			Storage: &metadata.PalletStorage{
				Prefix: "Collections",
				Entries: []metadata.StorageEntry{
					{
						Name:     "Owner",
						Modifier: metadata.StorageOptional,
						Hashers:  []hashing.Hasher{hashing.HasherTwox64Concat},
						Key:      TypeU128,
						Value:    TypeAccountID,
					},
				},
			},
		},
		{
			Name:   "Uniques",
			Index:  PalletIndexUniques,
			Calls:  typeRef(TypeUniquesCall),
			Events: typeRef(TypeUniquesEvent),
			Errors: typeRef(TypeUniquesError),
			Storage: &metadata.PalletStorage{
				Prefix: "Uniques",
				Entries: []metadata.StorageEntry{
					{
						Name:     "Class",
						Modifier: metadata.StorageOptional,
						Hashers:  []hashing.Hasher{hashing.HasherBlake2_128Concat},
						Key:      TypeU128,
						Value:    TypeAccountID,
					},
					{
						Name:     "Asset",
						Modifier: metadata.StorageOptional,
						Hashers: []hashing.Hasher{
							hashing.HasherBlake2_128Concat,
							hashing.HasherBlake2_128Concat,
						},
						Key:   TypeU128Pair,
						Value: TypeItemDetails,
					},
					{
						Name:     "NextCollectionId",
						Modifier: metadata.StorageDefault,
						Value:    TypeU32,
						Default:  []byte{0x05, 0x00, 0x00, 0x00},
					},
				},
			},
		},
	}
}

// Metadata returns a freshly built fixture metadata document
func Metadata() *metadata.Metadata {
	m := metadata.New(FixtureSpecVersion, FixtureTypes(), FixturePallets())
	m.TransactionVersion = 1
	return m
}
