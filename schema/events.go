// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package schema

const (
	// ComponentRegisteredTopic carries ComponentRegistered events
	ComponentRegisteredTopic = "schema.component.registered"
	// ComponentUpgradedTopic carries ComponentUpgraded events
	ComponentUpgradedTopic = "schema.component.upgraded"
	// ComponentDefinitionUpgradedTopic carries ComponentDefinitionUpgraded events
	ComponentDefinitionUpgradedTopic = "schema.component.definition.upgraded"
)

// ComponentRegistered is published once a definition has been registered
type ComponentRegistered struct {
	Definition *Definition
}

// ComponentDefinitionUpgraded is published once per upgrade, before any
// instance is migrated, whether or not the component has live instances.
type ComponentDefinitionUpgraded struct {
	Definition *Definition
	OldVersion int
}

// ComponentUpgraded is published once per entity whose instance was migrated.
// Consumers should treat the whole entity state as dirty.
type ComponentUpgraded struct {
	EntityID   string
	Component  string
	OldVersion int
	NewVersion int
}
