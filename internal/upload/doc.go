// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload manages attachment uploads for outgoing chat messages.
//
// Files selected by the user upload in parallel while their names are shown
// as a pending queue. Completed uploads become attachments on the next sent
// message; failed uploads are dropped individually without aborting the
// batch.
package upload
