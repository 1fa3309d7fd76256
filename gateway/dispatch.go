// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

// Handlers groups the handler sets of every family. Any subset may be
// filled in.
type Handlers struct {
	Session   SessionHandlers
	User      UserHandlers
	Voice     VoiceHandlers
	Workspace WorkspaceHandlers
	Channel   ChannelHandlers
	Role      RoleHandlers
	Member    MemberHandlers
}

var familyDispatch = [...]func(Event, *Handlers){
	FamilySession: func(e Event, h *Handlers) {
		if event, ok := e.(SessionEvent); ok {
			DispatchSession(event, &h.Session)
		}
	},
	FamilyUser: func(e Event, h *Handlers) {
		if event, ok := e.(UserEvent); ok {
			DispatchUser(event, &h.User)
		}
	},
	FamilyVoice: func(e Event, h *Handlers) {
		if event, ok := e.(VoiceEvent); ok {
			DispatchVoice(event, &h.Voice)
		}
	},
	FamilyWorkspace: func(e Event, h *Handlers) {
		if event, ok := e.(WorkspaceEvent); ok {
			DispatchWorkspace(event, &h.Workspace)
		}
	},
	FamilyChannel: func(e Event, h *Handlers) {
		if event, ok := e.(ChannelEvent); ok {
			DispatchChannel(event, &h.Channel)
		}
	},
	FamilyRole: func(e Event, h *Handlers) {
		if event, ok := e.(RoleEvent); ok {
			DispatchRole(event, &h.Role)
		}
	},
	FamilyMember: func(e Event, h *Handlers) {
		if event, ok := e.(MemberEvent); ok {
			DispatchMember(event, &h.Member)
		}
	},
}

var _ = [1]struct{}{}[len(familyDispatch)-int(familyCount)]

// Dispatch invokes the one handler in handlers that matches event.
// Nothing happens if that handler is nil, if event is nil, if handlers
// is nil, or if event reports a family it does not belong to. The
// handler runs before Dispatch returns.
func Dispatch(event Event, handlers *Handlers) {
	if event == nil || handlers == nil {
		return
	}
	id := event.Family()
	if id >= familyCount {
		return
	}
	familyDispatch[id](event, handlers)
}
